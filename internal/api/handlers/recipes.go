package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dom/shopcook-api/internal/api/middleware"
	"github.com/dom/shopcook-api/internal/api/response"
	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxCoverBytes = 5 << 20

type RecipeHandler struct {
	recipeService *service.RecipeService
	validate      *validator.Validate
}

func NewRecipeHandler(recipeService *service.RecipeService, validate *validator.Validate) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService, validate: validate}
}

type IngredientLineRequest struct {
	IngredientID *uint   `json:"ingredientId"`
	Name         string  `json:"name" validate:"max=120"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	Unit         string  `json:"unit" validate:"required,max=32"`
	Note         *string `json:"note" validate:"omitempty,max=160"`
}

type CreateRecipeRequest struct {
	Title       string                  `json:"title" validate:"required,min=3,max=160"`
	Servings    int                     `json:"servings" validate:"min=1"`
	PrepMinutes int                     `json:"prepMinutes" validate:"min=0"`
	CookMinutes int                     `json:"cookMinutes" validate:"min=0"`
	Difficulty  int                     `json:"difficulty" validate:"min=1,max=5"`
	Steps       []string                `json:"steps" validate:"dive,required"`
	CategoryID  *uint                   `json:"categoryId"`
	CoverURL    *string                 `json:"coverUrl" validate:"omitempty,url,max=500"`
	IsPublished *bool                   `json:"isPublished"`
	Ingredients []IngredientLineRequest `json:"ingredients" validate:"dive"`
}

type UpdateRecipeRequest struct {
	Title       *string                  `json:"title" validate:"omitempty,min=3,max=160"`
	Servings    *int                     `json:"servings" validate:"omitempty,min=1"`
	PrepMinutes *int                     `json:"prepMinutes" validate:"omitempty,min=0"`
	CookMinutes *int                     `json:"cookMinutes" validate:"omitempty,min=0"`
	Difficulty  *int                     `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Steps       *[]string                `json:"steps" validate:"omitempty,dive,required"`
	CategoryID  optionalID               `json:"categoryId"`
	CoverURL    *string                  `json:"coverUrl" validate:"omitempty,url,max=500"`
	IsPublished *bool                    `json:"isPublished"`
	Ingredients *[]IngredientLineRequest `json:"ingredients" validate:"omitempty,dive"`
}

// optionalID tells an absent field apart from an explicit null.
type optionalID struct {
	Set bool
	ID  *uint
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.ID)
}

type ReplaceIngredientsRequest struct {
	Items []IngredientLineRequest `json:"items" validate:"dive"`
}

func toIngredientLines(items []IngredientLineRequest) []domain.IngredientLine {
	lines := make([]domain.IngredientLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, domain.IngredientLine{
			IngredientID: it.IngredientID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			Unit:         it.Unit,
			Note:         it.Note,
		})
	}
	return lines
}

// parseRecipeFilter reads listing filters from the query string and returns
// the offending parameters when any are malformed.
func parseRecipeFilter(r *http.Request) (domain.RecipeFilter, map[string]string) {
	q := r.URL.Query()
	filter := domain.RecipeFilter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Page:     queryInt(r, "page"),
		Limit:    queryInt(r, "limit"),
	}
	invalid := map[string]string{}

	if v := q.Get("difficulty"); v != "" {
		d, ok := domain.ParseDifficulty(v)
		if ok {
			filter.Difficulty = &d
		} else {
			invalid["difficulty"] = "difficulty"
		}
	}
	if v := q.Get("maxTime"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n >= 0 {
			filter.MaxTime = &n
		} else {
			invalid["maxTime"] = "min"
		}
	}
	if v := q.Get("authorId"); v != "" {
		id, err := uuid.Parse(v)
		if err == nil {
			filter.AuthorID = &id
		} else {
			invalid["authorId"] = "uuid"
		}
	}

	return filter, invalid
}

func (h *RecipeHandler) filter(w http.ResponseWriter, r *http.Request) (domain.RecipeFilter, bool) {
	filter, invalid := parseRecipeFilter(r)
	if len(invalid) > 0 {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid query parameters", invalid)
		return filter, false
	}
	return filter, true
}

func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}

	page, err := h.recipeService.ListPublic(r.Context(), filter)
	if err != nil {
		writeError(w, "recipes.List", err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *RecipeHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}

	page, err := h.recipeService.ListMine(r.Context(), principal, filter)
	if err != nil {
		writeError(w, "recipes.ListMine", err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

// ListForAdmin excludes hidden recipes unless includeHidden=true.
func (h *RecipeHandler) ListForAdmin(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.filter(w, r)
	if !ok {
		return
	}
	includeHidden, _ := strconv.ParseBool(r.URL.Query().Get("includeHidden"))

	page, err := h.recipeService.ListForAdmin(r.Context(), filter, includeHidden)
	if err != nil {
		writeError(w, "recipes.ListForAdmin", err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

// Get resolves the "id" path segment as a uuid first, then as a slug.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.recipeService.GetPublicByIDOrSlug(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "recipes.Get", err)
		return
	}
	response.JSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}

	var req CreateRecipeRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	recipe, err := h.recipeService.Create(r.Context(), principal, service.CreateRecipeInput{
		Title:       req.Title,
		Servings:    req.Servings,
		PrepMinutes: req.PrepMinutes,
		CookMinutes: req.CookMinutes,
		Difficulty:  req.Difficulty,
		Steps:       req.Steps,
		CategoryID:  req.CategoryID,
		CoverURL:    req.CoverURL,
		IsPublished: req.IsPublished,
		Ingredients: toIngredientLines(req.Ingredients),
	})
	if err != nil {
		writeError(w, "recipes.Create", err)
		return
	}
	response.JSON(w, http.StatusCreated, recipe)
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	id, ok := pathUUID(w, r, "id", domain.ErrRecipeNotFound)
	if !ok {
		return
	}

	var req UpdateRecipeRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	input := service.UpdateRecipeInput{
		Title:       req.Title,
		Servings:    req.Servings,
		PrepMinutes: req.PrepMinutes,
		CookMinutes: req.CookMinutes,
		Difficulty:  req.Difficulty,
		Steps:       req.Steps,
		CoverURL:    req.CoverURL,
		IsPublished: req.IsPublished,
	}
	if req.CategoryID.Set {
		input.CategoryID = req.CategoryID.ID
		input.ClearCategory = req.CategoryID.ID == nil
	}
	if req.Ingredients != nil {
		lines := toIngredientLines(*req.Ingredients)
		input.Ingredients = &lines
	}

	recipe, err := h.recipeService.Update(r.Context(), id, principal, input)
	if err != nil {
		writeError(w, "recipes.Update", err)
		return
	}
	response.JSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) ReplaceIngredients(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	id, ok := pathUUID(w, r, "id", domain.ErrRecipeNotFound)
	if !ok {
		return
	}

	var req ReplaceIngredientsRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	recipe, err := h.recipeService.ReplaceIngredients(r.Context(), id, principal, toIngredientLines(req.Items))
	if err != nil {
		writeError(w, "recipes.ReplaceIngredients", err)
		return
	}
	response.JSON(w, http.StatusOK, recipe)
}

// UploadCover stores the multipart "file" field as the recipe cover.
func (h *RecipeHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	id, ok := pathUUID(w, r, "id", domain.ErrRecipeNotFound)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCoverBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, response.CodeValidation, "Cover image exceeds 5 MB", nil)
			return
		}
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Multipart field \"file\" is required", map[string]string{"file": "required"})
		return
	}
	defer file.Close()

	recipe, err := h.recipeService.SetCover(r.Context(), id, principal, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, "recipes.UploadCover", err)
		return
	}
	response.JSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		unauthorized(w)
		return
	}
	id, ok := pathUUID(w, r, "id", domain.ErrRecipeNotFound)
	if !ok {
		return
	}

	if err := h.recipeService.Remove(r.Context(), id, principal); err != nil {
		writeError(w, "recipes.Delete", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *RecipeHandler) Hide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", domain.ErrRecipeNotFound)
	if !ok {
		return
	}

	result, err := h.recipeService.Hide(r.Context(), id)
	if err != nil {
		writeError(w, "recipes.Hide", err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}
