package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/mia-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

type wishBody struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	ProductName string `json:"product_name" validate:"required,max=10"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_id":"5d0f4f6c-0b7c-4d7f-9b55-0c1e9a4b2f11","product_name":"ração"}`))
	var body wishBody
	require.NoError(t, DecodeJSONBody(req, &body))
	require.Equal(t, "ração", body.ProductName)
}

func TestDecodeJSONBodyRejections(t *testing.T) {
	cases := map[string]string{
		"unknown field": `{"user_id":"5d0f4f6c-0b7c-4d7f-9b55-0c1e9a4b2f11","product_name":"x","extra":1}`,
		"bad uuid":      `{"user_id":"nope","product_name":"x"}`,
		"too long":      `{"user_id":"5d0f4f6c-0b7c-4d7f-9b55-0c1e9a4b2f11","product_name":"abcdefghijk"}`,
		"malformed":     `{`,
		"empty":         ``,
		"two objects":   `{"user_id":"5d0f4f6c-0b7c-4d7f-9b55-0c1e9a4b2f11","product_name":"x"}{}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
			var body wishBody
			err := DecodeJSONBody(req, &body)
			require.Error(t, err)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestDecodeJSONBodyFieldDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"user_id":"nope"}`))
	var body wishBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	require.Equal(t, "must be a valid uuid", details["user_id"])
	require.Equal(t, "is required", details["product_name"])
}

func TestDecodeJSONBodyTooLarge(t *testing.T) {
	payload := `{"user_id":"5d0f4f6c-0b7c-4d7f-9b55-0c1e9a4b2f11","product_name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	var body wishBody
	err := DecodeJSONBody(req, &body)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Contains(t, err.Error(), "too large")
}

func TestCEPValidation(t *testing.T) {
	type quoteBody struct {
		CEP string `json:"cep" validate:"omitempty,cep"`
	}
	for _, good := range []string{`{}`, `{"cep":"01310-100"}`, `{"cep":" 01310100 "}`} {
		var body quoteBody
		require.NoError(t, DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(good)), &body), good)
	}

	var body quoteBody
	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"cep":"0131-0100"}`)), &body)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	require.Equal(t, "must be a postal code like 01310-100", details["cep"])
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=5&bad=x&big=500", nil)

	v, err := ParseQueryInt(req, "limit", 20, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 5, v)

	v, err = ParseQueryInt(req, "missing", 20, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 20, v)

	_, err = ParseQueryInt(req, "bad", 20, 1, 100)
	require.Error(t, err)
	_, err = ParseQueryInt(req, "big", 20, 1, 100)
	require.Error(t, err)
}

func TestParseUUID(t *testing.T) {
	_, err := ParseUUID(" ", "wish_id")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseUUID("abc", "wish_id")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	id, err := ParseUUID("5d0f4f6c-0b7c-4d7f-9b55-0c1e9a4b2f11", "wish_id")
	require.NoError(t, err)
	require.Equal(t, "5d0f4f6c-0b7c-4d7f-9b55-0c1e9a4b2f11", id.String())
}

func TestSanitizeString(t *testing.T) {
	require.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	require.Equal(t, "ração", SanitizeString(" ração ", 0))
	require.Equal(t, "fone bluetooth jbl", SanitizeString("fone\tbluetooth\x00  \n jbl", 0))
	require.Equal(t, "fone", SanitizeString("fone bluetooth", 5))
	require.Empty(t, SanitizeString(" \t\n ", 10))
}

func TestQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?user_id=5d0f4f6c-0b7c-4d7f-9b55-0c1e9a4b2f11&product_name=%20Ra%C3%A7%C3%A3o%20%20Golden%20&blank=%20%20", nil)

	id, err := QueryUUID(req, "user_id")
	require.NoError(t, err)
	require.Equal(t, "5d0f4f6c-0b7c-4d7f-9b55-0c1e9a4b2f11", id.String())

	name, err := RequiredQueryString(req, "product_name", 255)
	require.NoError(t, err)
	require.Equal(t, "Ração Golden", name)

	_, err = RequiredQueryString(req, "blank", 255)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	limit, err := ParseLimit(req)
	require.NoError(t, err)
	require.Equal(t, 25, limit)
}
