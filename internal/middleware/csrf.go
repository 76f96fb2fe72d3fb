package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

const (
	// CSRFCookieName is the cookie that carries the double-submit token.
	CSRFCookieName = "pd_csrf"

	// CSRFHeaderName is the header the frontend echoes the token in.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormField is the fallback form field for plain form posts.
	CSRFFormField = "csrf_token"

	// 32 random bytes, hex encoded to 64 chars.
	csrfTokenBytes = 32
)

// CSRF implements double-submit cookie protection. Every response gets
// a token cookie if one is missing; state-changing requests must echo
// the cookie's value back in the X-CSRF-Token header or the csrf_token
// form field. The cookie is deliberately not HttpOnly so the SPA can
// read it.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := GetCSRFToken(r)
		if token == "" {
			var err error
			token, err = newCSRFToken()
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CSRFCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: false,
				Secure:   false, // true behind TLS
				SameSite: http.SameSiteStrictMode,
			})
			// Make the fresh token visible to handlers on this same
			// request, so the bootstrap endpoint can return it.
			r.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: token})
		}

		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		submitted := r.Header.Get(CSRFHeaderName)
		if submitted == "" {
			submitted = r.FormValue(CSRFFormField)
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
			writeError(w, http.StatusForbidden, "CSRF token mismatch")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions
}

// GetCSRFToken reads the current token from the request cookie. The
// /api/csrf endpoint returns it so SPA clients can bootstrap.
func GetCSRFToken(r *http.Request) string {
	cookie, err := r.Cookie(CSRFCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
