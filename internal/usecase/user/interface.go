package user

import (
	"context"

	"github.com/google/uuid"

	domain "social-graph-service/internal/domain/user"
)

// Usecase defines the interface for social-graph business logic operations.
type Usecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*Profile, error)
	GetUser(ctx context.Context, id uuid.UUID) (*Profile, error)
	ListUsers(ctx context.Context) ([]Profile, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*Profile, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	LinkUsers(ctx context.Context, userID, friendID uuid.UUID) error
	UnlinkUsers(ctx context.Context, userID, friendID uuid.UUID) error
	PopularityScore(u *domain.User) (float64, error)
	GraphData(ctx context.Context) (*GraphResponse, error)
	ToProfile(u *domain.User) (*Profile, error)
}
