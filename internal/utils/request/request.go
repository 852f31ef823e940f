// Package request holds the small parsing steps every handler repeats:
// reading the {id} path segment and decoding a JSON body.
package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidID is returned by PathID when {id} is not an integer.
	ErrInvalidID = errors.New("invalid id: must be an integer")

	// ErrEmptyBody is returned by DecodeJSON when the body has no content.
	ErrEmptyBody = errors.New("request body is empty")
)

// validate is shared: validator caches struct metadata per instance.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names ("score1", "class") instead of
	// the Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the validate:"..." tags on v. A failure is returned as
// validator.ValidationErrors.
func Validate(v any) error {
	return validate.Struct(v)
}

// PathID parses the {id} path segment as an int64.
func PathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}

// DecodeJSON decodes the request body into v.
// An empty body yields ErrEmptyBody rather than io.EOF.
func DecodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return ErrEmptyBody
	}
	return err
}
