package services

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AccessTokenValidator is the stateless predicate of spec §4.2. An empty
// configured token means "allow all"; otherwise the candidate is taken
// from an `Authorization: Bearer <tok>` header, or — only when no
// Authorization header is present at all — the `access_token` query
// parameter.
type AccessTokenValidator struct {
	token string
}

// NewAccessTokenValidator builds a validator for the given configured
// token (may be empty).
func NewAccessTokenValidator(token string) *AccessTokenValidator {
	return &AccessTokenValidator{token: token}
}

// Validate reports whether r carries a token matching the configured
// secret. Comparison is constant-time (crypto/subtle.ConstantTimeCompare),
// though spec §4.2 notes this is recommended, not required, for protocol
// correctness.
func (v *AccessTokenValidator) Validate(r *http.Request) bool {
	if v.token == "" {
		return true
	}

	var candidate string
	var hasCandidate bool

	if auth := r.Header.Get("Authorization"); auth != "" {
		// Per spec §4.2: if Authorization is present but not a Bearer
		// form, the candidate is null and validation fails — it is NOT
		// retried against the query parameter.
		if strings.HasPrefix(auth, "Bearer ") {
			candidate = strings.TrimPrefix(auth, "Bearer ")
			hasCandidate = true
		}
	} else if q := r.URL.Query().Get("access_token"); q != "" {
		candidate = q
		hasCandidate = true
	}

	if !hasCandidate {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(candidate), []byte(v.token)) == 1
}
