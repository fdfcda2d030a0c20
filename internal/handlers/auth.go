package handlers

import (
	"errors"
	"net/http"

	"github.com/openfare/openfare/internal/apperrors"
	"github.com/openfare/openfare/internal/handlers/principalctx"
	"github.com/openfare/openfare/internal/handlers/render"
	"github.com/openfare/openfare/internal/logger"
	"github.com/openfare/openfare/internal/models"
	"github.com/openfare/openfare/internal/service/auth"
)

type userResponse struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Phone string      `json:"phone,omitempty"`
	Role  models.Role `json:"role"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Role:  u.Role,
	}
}

func handleSignup(authService authService, l logger.Logger) http.Handler {
	type SignupRequest struct {
		Name     string `json:"name" validate:"required,min=2,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Phone    string `json:"phone" validate:"omitempty,min=6,max=20"`
		Password string `json:"password" validate:"required,min=6"`
	}
	type SignupResponse struct {
		Success bool         `json:"success"`
		Message string       `json:"message"`
		User    userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[SignupRequest](w, r)
		if err != nil {
			return
		}

		user, err := authService.Signup(r.Context(), auth.SignupParams{
			Name:     data.Name,
			Email:    data.Email,
			Phone:    data.Phone,
			Password: data.Password,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.Error(w, "User with this email already exists", http.StatusConflict)
			default:
				l.Error("failed to sign up user", "error", err)
				render.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSONStatus(w, http.StatusCreated, SignupResponse{
			Success: true,
			Message: "User registered successfully",
			User:    toUserResponse(user),
		})
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type LoginResponse struct {
		Success     bool         `json:"success"`
		Message     string       `json:"message"`
		AccessToken string       `json:"accessToken"`
		User        userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[LoginRequest](w, r)
		if err != nil {
			return
		}

		pair, user, err := authService.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidCredentials):
				render.Error(w, "Invalid credentials", http.StatusUnauthorized)
			default:
				l.Error("failed to log in user", "error", err)
				render.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		authService.SetTokenPair(w, pair)
		render.JSON(w, LoginResponse{
			Success:     true,
			Message:     "Login successful",
			AccessToken: pair.Access.Value,
			User:        toUserResponse(user),
		})
	})
}

func handleRefresh(authService authService, l logger.Logger) http.Handler {
	type RefreshResponse struct {
		Success     bool   `json:"success"`
		Message     string `json:"message"`
		AccessToken string `json:"accessToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, err := authService.ReadRefreshToken(r)
		if err != nil {
			render.Error(w, "Refresh token not provided", http.StatusUnauthorized)
			return
		}

		pair, err := authService.Refresh(r.Context(), refresh)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.Error(w, "User no longer exists", http.StatusForbidden)
			case errors.Is(err, apperrors.ErrTokenExpired),
				errors.Is(err, apperrors.ErrTokenRevoked),
				errors.Is(err, apperrors.ErrTokenWrongType),
				errors.Is(err, apperrors.ErrTokenSignatureInvalid),
				errors.Is(err, apperrors.ErrTokenMalformed):
				render.Error(w, "Invalid or expired refresh token", http.StatusForbidden)
			default:
				l.Error("failed to refresh tokens", "error", err)
				render.Error(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		authService.SetTokenPair(w, pair)
		render.JSON(w, RefreshResponse{
			Success:     true,
			Message:     "Tokens refreshed successfully",
			AccessToken: pair.Access.Value,
		})
	})
}

func handleLogout(authService authService, l logger.Logger) http.Handler {
	type LogoutResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Revocation is best effort, cookies are cleared no matter what
		if err := authService.Logout(r.Context(), auth.BearerToken(r)); err != nil {
			l.Error("failed to revoke tokens on logout", "error", err)
		}

		authService.ClearAuthCookies(w)
		render.JSON(w, LogoutResponse{Success: true, Message: "Logged out successfully"})
	})
}

func handleMe(authService authService) http.Handler {
	type MeResponse struct {
		Success bool             `json:"success"`
		User    models.Principal `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalctx.FromContext(r.Context())
		if !ok {
			// Not behind the gate: resolve from the request directly
			var err error
			p, err = authService.AuthenticateHeader(r.Context(), r)
			if err != nil {
				p, err = authService.AuthenticateCookie(r.Context(), r)
			}
			if err != nil {
				render.Error(w, "Invalid or expired token", http.StatusForbidden)
				return
			}
		}

		render.JSON(w, MeResponse{Success: true, User: p})
	})
}
