package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationErrors maps each invalid field to the failed rule
func validationErrors(err error) map[string]string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return map[string]string{"_": err.Error()}
	}
	out := make(map[string]string, len(ves))
	for _, ve := range ves {
		out[ve.Namespace()[strings.Index(ve.Namespace(), ".")+1:]] = ve.Tag()
	}
	return out
}

func decodeJSON(req *http.Request, dst interface{}) error {
	return json.NewDecoder(req.Body).Decode(dst)
}

// decodeAndValidate reads a JSON body into dst and validates it.
// It writes the 400 response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, req *http.Request, dst interface{}) bool {
	if err := decodeJSON(req, dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"fields": validationErrors(err),
		})
		return false
	}
	return true
}
