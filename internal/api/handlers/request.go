package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/dom/shopcook-api/internal/api/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	maxBodyBytes = 1 << 20

	// bcrypt rejects passwords longer than 72 bytes.
	maxPasswordBytes = 72
)

// NewValidator reports field errors under their JSON names. It also registers
// "password", which bounds a string by its byte length for bcrypt.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it. On failure the
// response has been written and false is returned.
func decode(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "Invalid request body", nil)
		return false
	}
	return validate(w, v, dst)
}

func validate(w http.ResponseWriter, v *validator.Validate, dst interface{}) bool {
	err := v.Struct(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error(), nil)
		return false
	}

	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		details[field] = fe.Tag()
	}
	response.Error(w, http.StatusBadRequest, response.CodeValidation, "Validation failed", details)
	return false
}

// pathUUID parses a uuid URL parameter. Malformed ids cannot match a row, so
// they are reported as notFound.
func pathUUID(w http.ResponseWriter, r *http.Request, name string, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, "handlers.pathUUID", notFound)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}
