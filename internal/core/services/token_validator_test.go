package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessTokenValidator_EmptyTokenAllowsAll(t *testing.T) {
	v := NewAccessTokenValidator("")
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.True(t, v.Validate(r))
}

func TestAccessTokenValidator_BearerHeaderMatch(t *testing.T) {
	v := NewAccessTokenValidator("secret-token")
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer secret-token")

	assert.True(t, v.Validate(r))
}

func TestAccessTokenValidator_BearerHeaderMismatch(t *testing.T) {
	v := NewAccessTokenValidator("secret-token")
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer wrong-token")

	assert.False(t, v.Validate(r))
}

func TestAccessTokenValidator_QueryParamFallback(t *testing.T) {
	v := NewAccessTokenValidator("secret-token")
	r := httptest.NewRequest(http.MethodGet, "/?access_token=secret-token", nil)

	assert.True(t, v.Validate(r))
}

func TestAccessTokenValidator_QueryParamMismatch(t *testing.T) {
	v := NewAccessTokenValidator("secret-token")
	r := httptest.NewRequest(http.MethodGet, "/?access_token=wrong", nil)

	assert.False(t, v.Validate(r))
}

func TestAccessTokenValidator_NonBearerAuthorizationDoesNotFallBackToQuery(t *testing.T) {
	v := NewAccessTokenValidator("secret-token")
	r := httptest.NewRequest(http.MethodGet, "/?access_token=secret-token", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	assert.False(t, v.Validate(r), "an Authorization header present but not Bearer must fail, not fall back to the query parameter")
}

func TestAccessTokenValidator_NoTokenAtAll(t *testing.T) {
	v := NewAccessTokenValidator("secret-token")
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.False(t, v.Validate(r))
}
