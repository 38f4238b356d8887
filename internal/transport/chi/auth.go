package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Probes scraped by the platform stay open.
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

const apiKeyHeader = "X-API-Key"

// APIKeyMiddleware accepts a key either as "Authorization: Bearer <key>" or
// in the X-API-Key header. An empty key list disables the check.
func APIKeyMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, msg := credential(r)
			if msg != "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, msg)
				return
			}
			if !knownKey(keys, token) {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// credential extracts the presented key, or an error message for the client.
func credential(r *http.Request) (string, string) {
	if key := r.Header.Get(apiKeyHeader); key != "" {
		return key, ""
	}
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing api key"
	}
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", "authorization header must use Bearer scheme"
	}
	return token, ""
}

func knownKey(keys [][]byte, token string) bool {
	t := []byte(token)
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, t)
	}
	return found == 1
}
