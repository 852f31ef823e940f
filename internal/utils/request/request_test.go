package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/students/12", nil)
	r.SetPathValue("id", "12")

	id, err := PathID(r)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	r.SetPathValue("id", "abc")
	_, err = PathID(r)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ann"}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, "Ann", v.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.ErrorIs(t, DecodeJSON(r, &v), ErrEmptyBody)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	assert.Error(t, DecodeJSON(r, &v))
}

func TestValidateUsesJSONNames(t *testing.T) {
	payload := struct {
		Score *float64 `json:"score1" validate:"required"`
		Class string   `json:"class" validate:"required"`
	}{}

	err := Validate(payload)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "score1", verrs[0].Field())
	assert.Equal(t, "class", verrs[1].Field())
}
