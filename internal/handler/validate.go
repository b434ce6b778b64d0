package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report violations under the JSON field name, not the Go one.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// bindingErrors turns a ShouldBindJSON failure into the "field: message"
// list the API returns with 400s.
func bindingErrors(err error) []string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, fe.Field()+": "+validationMessage(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []string{typeErr.Field + ": must be " + friendlyType(typeErr.Type.Kind())}
	}

	return []string{"body: must be valid JSON"}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be blank"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be " + fe.Param() + " or more"
	case "max":
		if fe.Kind() == reflect.String {
			return "must be " + fe.Param() + " characters or less"
		}
		return "must be " + fe.Param() + " or less"
	}
	return "is invalid"
}

func friendlyType(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "a string"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Bool:
		return "a boolean"
	}
	return "a valid value"
}

// bindPartial decodes the request body into a map so present keys and null
// keys can be told apart. An empty body means no changes. On malformed JSON
// it writes the 400 itself and returns ok=false.
func bindPartial(c *gin.Context) (map[string]any, bool) {
	data := map[string]any{}
	if err := c.ShouldBindJSON(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return data, true
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"body: must be valid JSON"}})
		return nil, false
	}
	return data, true
}

// The helpers below are for partial updates, which bind into a
// map[string]any so "field absent" and "field present with null" can be
// told apart. JSON numbers arrive as float64.

// jsonString interprets v as an optional string. ok is false on a type
// mismatch; a JSON null yields (nil, true).
func jsonString(v any) (*string, bool) {
	if v == nil {
		return nil, true
	}
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	return &s, true
}

// jsonInt interprets v as an optional integer.
func jsonInt(v any) (*int, bool) {
	if v == nil {
		return nil, true
	}
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return nil, false
	}
	n := int(f)
	return &n, true
}

// jsonFloat interprets v as an optional number.
func jsonFloat(v any) (*float64, bool) {
	if v == nil {
		return nil, true
	}
	f, ok := v.(float64)
	if !ok {
		return nil, false
	}
	return &f, true
}
