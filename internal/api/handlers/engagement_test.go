package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/shopcook-api/internal/domain"
	"github.com/dom/shopcook-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commentResponse struct {
	ID         string `json:"id"`
	AuthorName string `json:"authorName"`
	Message    string `json:"message"`
}

func TestEngagementHandler_Comments(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().WithDisplayName("Margaux").BuildAndAuthenticate(t, ts)
	_, strangerToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	_, adminToken := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).BuildAndAuthenticate(t, ts)
	recipe := testutil.NewRecipeBuilder().Build(t, ts.DB.DB)
	commentsURL := ts.APIURL("/recipes/" + recipe.ID.String() + "/comments")

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
		expectedCode   string
		wantMessage    string
	}{
		{name: "body field", body: map[string]string{"body": "Un régal"}, expectedStatus: http.StatusCreated, wantMessage: "Un régal"},
		{name: "legacy message field", body: map[string]string{"message": "Parfait"}, expectedStatus: http.StatusCreated, wantMessage: "Parfait"},
		{name: "too short", body: map[string]string{"body": "ok"}, expectedStatus: http.StatusBadRequest, expectedCode: "ERR_VALIDATION"},
		{name: "missing", body: map[string]string{}, expectedStatus: http.StatusBadRequest, expectedCode: "ERR_VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.DoJSON(t, http.MethodPost, commentsURL, token, tt.body)
			defer resp.Body.Close()

			if tt.expectedCode != "" {
				testutil.AssertErrorCode(t, resp, tt.expectedStatus, tt.expectedCode)
				return
			}

			var comment commentResponse
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			testutil.AssertJSONResponse(t, resp, &comment)
			assert.Equal(t, tt.wantMessage, comment.Message)
			assert.Equal(t, user.DisplayName, comment.AuthorName)
		})
	}

	resp, err := http.Get(commentsURL)
	require.NoError(t, err)
	var page struct {
		Items []commentResponse `json:"items"`
		Total int64             `json:"total"`
		Limit int               `json:"limit"`
	}
	testutil.AssertJSONResponse(t, resp, &page)
	resp.Body.Close()
	require.Equal(t, int64(2), page.Total)
	assert.Equal(t, 10, page.Limit)

	commentURL := ts.APIURL("/comments/" + page.Items[0].ID)

	resp = testutil.DoJSON(t, http.MethodDelete, commentURL, strangerToken, nil)
	testutil.AssertErrorCode(t, resp, http.StatusForbidden, "ERR_FORBIDDEN")
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodDelete, commentURL, token, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodDelete, commentURL, adminToken, nil)
	testutil.AssertErrorCode(t, resp, http.StatusNotFound, "ERR_COMMENT_NOT_FOUND")
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/admin/comments?recipeId="+recipe.ID.String()), adminToken, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &page)
	resp.Body.Close()
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 20, page.Limit)
}

func TestEngagementHandler_RatingAndFavorites(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	recipe := testutil.NewRecipeBuilder().Build(t, ts.DB.DB)
	recipeURL := ts.APIURL("/recipes/" + recipe.ID.String())

	var rated struct {
		Stars   int     `json:"stars"`
		Average float64 `json:"average"`
	}
	resp := testutil.DoJSON(t, http.MethodPost, recipeURL+"/rating", token, map[string]int{"stars": 3})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &rated)
	resp.Body.Close()
	assert.InDelta(t, 3.0, rated.Average, 0.001)

	resp = testutil.DoJSON(t, http.MethodPost, recipeURL+"/rating", token, map[string]int{"rating": 5})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &rated)
	resp.Body.Close()
	assert.InDelta(t, 5.0, rated.Average, 0.001, "re-rating replaces the previous score")

	resp = testutil.DoJSON(t, http.MethodPost, recipeURL+"/rating", token, map[string]int{"stars": 7})
	testutil.AssertErrorCode(t, resp, http.StatusBadRequest, "ERR_INVALID_STARS")
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodGet, recipeURL, "", nil)
	var detail recipeResponse
	testutil.AssertJSONResponse(t, resp, &detail)
	resp.Body.Close()
	assert.Equal(t, int64(1), detail.RatingCount)

	for i := 0; i < 2; i++ {
		resp = testutil.DoJSON(t, http.MethodPost, recipeURL+"/favorite", token, nil)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	var favorites []struct {
		ID         string `json:"id"`
		IsFavorite bool   `json:"isFavorite"`
	}
	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/me/favorites"), token, nil)
	testutil.AssertJSONResponse(t, resp, &favorites)
	resp.Body.Close()
	require.Len(t, favorites, 1)
	assert.Equal(t, recipe.ID.String(), favorites[0].ID)
	assert.True(t, favorites[0].IsFavorite)

	resp = testutil.DoJSON(t, http.MethodDelete, recipeURL+"/favorite", token, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/me/favorites"), token, nil)
	testutil.AssertJSONResponse(t, resp, &favorites)
	resp.Body.Close()
	assert.Empty(t, favorites)
}

func TestUserHandler_Me(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
	testutil.NewUserBuilder().WithEmail("taken@example.com").Build(t, ts.DB.DB)
	testutil.NewRecipeBuilder().WithAuthor(user).Draft().Build(t, ts.DB.DB)

	resp := testutil.DoJSON(t, http.MethodGet, ts.APIURL("/me"), "", nil)
	testutil.AssertErrorCode(t, resp, http.StatusUnauthorized, "ERR_UNAUTHORIZED")
	resp.Body.Close()

	var me struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		DisplayName  string `json:"displayName"`
		PasswordHash string `json:"passwordHash"`
	}
	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/me"), token, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &me)
	resp.Body.Close()
	assert.Equal(t, user.ID.String(), me.ID)
	assert.Empty(t, me.PasswordHash, "password hashes never leave the server")

	resp = testutil.DoJSON(t, http.MethodPatch, ts.APIURL("/me"), token, map[string]string{"displayName": "Chef Gaston"})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &me)
	resp.Body.Close()
	assert.Equal(t, "Chef Gaston", me.DisplayName)

	resp = testutil.DoJSON(t, http.MethodPatch, ts.APIURL("/me"), token, map[string]string{"email": "taken@example.com"})
	testutil.AssertErrorCode(t, resp, http.StatusUnauthorized, "ERR_EMAIL_TAKEN")
	resp.Body.Close()

	var mine recipePage
	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/me/recipes"), token, nil)
	testutil.AssertJSONResponse(t, resp, &mine)
	resp.Body.Close()
	assert.Equal(t, int64(1), mine.Total, "drafts are listed for their author")

	var export struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		Recipes []struct {
			ID string `json:"id"`
		} `json:"recipes"`
	}
	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/me/export"), token, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	testutil.AssertJSONResponse(t, resp, &export)
	resp.Body.Close()
	assert.Equal(t, user.Email, export.User.Email)
	assert.Len(t, export.Recipes, 1)

	resp = testutil.DoJSON(t, http.MethodDelete, ts.APIURL("/me"), token, nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodGet, ts.APIURL("/me"), token, nil)
	testutil.AssertErrorCode(t, resp, http.StatusNotFound, "ERR_USER_NOT_FOUND")
	resp.Body.Close()
}

func TestCatalogHandler(t *testing.T) {
	ts := testutil.NewTestServer(t)
	require.NoError(t, ts.Services.Catalog.SeedCategories(t.Context(), []string{"Desserts", "Plats"}))

	resp, err := http.Get(ts.APIURL("/categories"))
	require.NoError(t, err)
	var categories []struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	testutil.AssertJSONResponse(t, resp, &categories)
	resp.Body.Close()
	require.Len(t, categories, 2)
	assert.Equal(t, "desserts", categories[0].Slug)

	resp, err = http.Get(ts.APIURL("/health"))
	require.NoError(t, err)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()
}
