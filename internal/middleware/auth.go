package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type contextKey string

const (
	PrincipalKey contextKey = "principal"
)

// Role of an authenticated caller
type Role string

const (
	RoleCompany  Role = "company"
	RoleReviewer Role = "reviewer"
)

// Principal is who an API key belongs to
type Principal struct {
	ID   string
	Role Role
}

type credential struct {
	key       []byte
	principal Principal
}

// Keyring maps API keys to principals
type Keyring struct {
	creds []credential
}

// NewKeyring builds a keyring from id -> key maps. Empty keys are skipped.
func NewKeyring(companies, reviewers map[string]string) *Keyring {
	k := &Keyring{}
	for id, key := range companies {
		k.add(id, key, RoleCompany)
	}
	for id, key := range reviewers {
		k.add(id, key, RoleReviewer)
	}
	return k
}

func (k *Keyring) add(id, key string, role Role) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	k.creds = append(k.creds, credential{key: []byte(key), principal: Principal{ID: id, Role: role}})
}

// Lookup compares every key in constant time
func (k *Keyring) Lookup(apiKey string) (Principal, bool) {
	var (
		found Principal
		ok    bool
	)
	for _, c := range k.creds {
		if subtle.ConstantTimeCompare([]byte(apiKey), c.key) == 1 && !ok {
			found, ok = c.principal, true
		}
	}
	return found, ok
}

// APIKeyAuth validates API key from Authorization header
func APIKeyAuth(keys *Keyring) func(http.Handler) http.Handler {
	return authenticate(keys, false)
}

// OptionalAPIKeyAuth lets requests without Authorization through anonymously.
// A key that is sent must still be valid.
func OptionalAPIKeyAuth(keys *Keyring) func(http.Handler) http.Handler {
	return authenticate(keys, true)
}

func authenticate(keys *Keyring, optional bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				if optional {
					next.ServeHTTP(w, r)
					return
				}
				WriteError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				WriteError(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}

			p, ok := keys.Lookup(apiKey)
			if !ok {
				WriteError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext extracts the caller set by APIKeyAuth
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(Principal)
	return p, ok
}

// RequireRole rejects callers of any other role with 403
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok || p.Role != role {
				WriteError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCompany ensures the {company} URL param matches the authenticated company
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		company := chi.URLParam(r, "company")
		if err := ValidateCompanyID(company); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		p, ok := PrincipalFromContext(r.Context())
		if !ok || p.Role != RoleCompany || p.ID != company {
			WriteError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
