package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/openfare/openfare/internal/handlers/principalctx"
	"github.com/openfare/openfare/internal/handlers/render"
	"github.com/openfare/openfare/internal/models"
	authsvc "github.com/openfare/openfare/internal/service/auth"
)

// authenticator resolves a principal from request credentials.
// The two methods differ only in where the token lives.
type authenticator interface {
	AuthenticateHeader(ctx context.Context, r *http.Request) (models.Principal, error)
	AuthenticateCookie(ctx context.Context, r *http.Request) (models.Principal, error)
}

// RoleRule grants a path prefix to a single role
type RoleRule struct {
	PathPrefix string
	Role       models.Role
}

// GateConfig describes how the gate classifies request paths.
// Exempt prefixes are matched before protected ones, so /api/auth/*
// stays open while the rest of /api/* requires a bearer token. Paths
// matching neither the API prefix nor a page prefix pass through
// unauthenticated.
type GateConfig struct {
	ExemptPrefixes []string
	ExemptPaths    []string
	APIPrefix      string
	PagePrefixes   []string
	LoginPath      string
	RoleRules      []RoleRule
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		ExemptPrefixes: []string{"/api/auth/"},
		ExemptPaths:    []string{"/", "/login"},
		APIPrefix:      "/api/",
		PagePrefixes:   []string{"/dashboard", "/bookings"},
		LoginPath:      "/login",
		RoleRules: []RoleRule{
			{PathPrefix: "/api/users", Role: models.RoleAdmin},
		},
	}
}

// Gate authenticates every request that is not exempt. API requests
// present a bearer token and get JSON rejections; page requests present
// the session cookie and get redirected to the login page instead.
func Gate(cfg GateConfig, auth authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if isExempt(cfg, path) {
				next.ServeHTTP(w, r)
				return
			}

			if strings.HasPrefix(path, cfg.APIPrefix) {
				gateAPI(cfg, auth, next, w, r)
				return
			}

			if isPage(cfg, path) {
				gatePage(cfg, auth, next, w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isExempt(cfg GateConfig, path string) bool {
	for _, prefix := range cfg.ExemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, exempt := range cfg.ExemptPaths {
		if path == exempt {
			return true
		}
	}
	return false
}

func isPage(cfg GateConfig, path string) bool {
	for _, prefix := range cfg.PagePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func gateAPI(cfg GateConfig, auth authenticator, next http.Handler, w http.ResponseWriter, r *http.Request) {
	if authsvc.BearerToken(r) == "" {
		render.Error(w, "Authorization token missing", http.StatusUnauthorized)
		return
	}

	p, err := auth.AuthenticateHeader(r.Context(), r)
	if err != nil {
		render.Error(w, "Invalid or expired token", http.StatusForbidden)
		return
	}

	if !roleAllowed(cfg.RoleRules, r.URL.Path, p.Role) {
		render.Error(w, "Admin access required", http.StatusForbidden)
		return
	}

	next.ServeHTTP(w, r.WithContext(principalctx.New(r.Context(), p)))
}

func gatePage(cfg GateConfig, auth authenticator, next http.Handler, w http.ResponseWriter, r *http.Request) {
	p, err := auth.AuthenticateCookie(r.Context(), r)
	if err != nil {
		http.Redirect(w, r, cfg.LoginPath, http.StatusSeeOther)
		return
	}

	if !roleAllowed(cfg.RoleRules, r.URL.Path, p.Role) {
		http.Redirect(w, r, cfg.LoginPath, http.StatusSeeOther)
		return
	}

	next.ServeHTTP(w, r.WithContext(principalctx.New(r.Context(), p)))
}

func roleAllowed(rules []RoleRule, path string, role models.Role) bool {
	for _, rule := range rules {
		if strings.HasPrefix(path, rule.PathPrefix) && role != rule.Role {
			return false
		}
	}
	return true
}
