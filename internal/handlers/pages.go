package handlers

import (
	"net/http"

	"github.com/openfare/openfare/internal/handlers/principalctx"
	"github.com/openfare/openfare/internal/handlers/render"
	"github.com/openfare/openfare/internal/models"
)

// Page endpoints back the browser side of the app. They are plain JSON
// stubs: the real UI is served separately, these exist so the redirect
// gating has pages to protect.

func handleHomePage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, map[string]string{"page": "home"})
	})
}

func handleLoginPage() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, map[string]string{"page": "login"})
	})
}

func handleDashboardPage() http.Handler {
	type DashboardResponse struct {
		Page string           `json:"page"`
		User models.Principal `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := principalctx.FromContext(r.Context())
		render.JSON(w, DashboardResponse{Page: "dashboard", User: p})
	})
}
