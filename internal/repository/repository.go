package repository

import (
	"context"

	"github.com/openfare/openfare/internal/models"
)

type CreateUserParams struct {
	Name         string
	Email        string
	Phone        string
	Role         models.Role
	PasswordHash string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If a user with the same email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, arg CreateUserParams) (models.User, error)

	// Get user by id or email (exact match on the stored column)
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// List all users ordered by id
	ListUsers(ctx context.Context) ([]models.User, error)
}
