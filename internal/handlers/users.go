package handlers

import (
	"net/http"

	"github.com/openfare/openfare/internal/handlers/render"
	"github.com/openfare/openfare/internal/logger"
)

// handleListUsers serves the admin user listing. The role gate in front
// of /api/users guarantees only ADMIN principals reach this handler.
func handleListUsers(userRepo userLister, l logger.Logger) http.Handler {
	type ListUsersResponse struct {
		Success bool           `json:"success"`
		Users   []userResponse `json:"users"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		users, err := userRepo.ListUsers(r.Context())
		if err != nil {
			l.Error("failed to list users", "error", err)
			render.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		resp := ListUsersResponse{Success: true, Users: make([]userResponse, 0, len(users))}
		for _, u := range users {
			resp.Users = append(resp.Users, toUserResponse(u))
		}

		render.JSON(w, resp)
	})
}
