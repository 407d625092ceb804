package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "social-graph-service/internal/domain/user"
	apperrors "social-graph-service/pkg/errors"
)

// Repository defines the interface for user data access operations.
// It abstracts the data layer, allowing different implementations
// (e.g., PostgreSQL, cached) to be used interchangeably.
type Repository interface {
	Create(ctx context.Context, u *domain.User) error                          // Persist a new user
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)           // Retrieve user with friends one level deep
	GetByUsername(ctx context.Context, username string) (*domain.User, error)  // Retrieve user by username, nil when absent
	Update(ctx context.Context, u *domain.User) error                          // Replace username, age and hobbies
	Delete(ctx context.Context, id uuid.UUID) error                            // Remove user by ID
	List(ctx context.Context) ([]domain.User, error)                           // All users with friends one level deep
	Link(ctx context.Context, userID, friendID uuid.UUID) error                // Write both directed edges in one transaction
	Unlink(ctx context.Context, userID, friendID uuid.UUID) error              // Remove both directed edges in one transaction
}

// usecase implements the business rules for the social graph: user
// lifecycle preconditions, bidirectional link/unlink, popularity scoring,
// graph export and profile mapping.
type usecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new Usecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) Usecase {
	return &usecase{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a human-readable error.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return apperrors.NewValidationError("", strings.Join(messages, ", "))
	}
	return err
}

// CreateUser creates a new user after validating the request and checking
// username uniqueness. A missing hobby set is normalized to empty; the
// identifier and creation timestamp are always assigned here.
func (uc *usecase) CreateUser(ctx context.Context, in CreateUserRequest) (*Profile, error) {
	uc.log.Info("creating user", zap.String("username", in.Username), zap.Int("age", in.Age))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	existing, err := uc.repo.GetByUsername(ctx, in.Username)
	if err != nil {
		uc.log.Error("failed to check existing username", zap.String("username", in.Username), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to validate username uniqueness", err)
	}
	if existing != nil {
		uc.log.Warn("username already exists", zap.String("username", in.Username))
		return nil, apperrors.NewConflictError("Username already exists")
	}

	u := &domain.User{
		ID:        uuid.New(),
		Username:  in.Username,
		Age:       in.Age,
		Hobbies:   domain.NormalizeHobbies(in.Hobbies),
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.repo.Create(ctx, u); err != nil {
		uc.log.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	uc.log.Info("user created", zap.String("id", u.ID.String()), zap.String("username", u.Username))
	return uc.ToProfile(u)
}

// GetUser retrieves a user by ID.
func (uc *usecase) GetUser(ctx context.Context, id uuid.UUID) (*Profile, error) {
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		uc.log.Warn("failed to get user", zap.String("id", id.String()), zap.Error(err))
		return nil, err
	}
	return uc.ToProfile(u)
}

// ListUsers retrieves every stored user, in storage iteration order.
func (uc *usecase) ListUsers(ctx context.Context) ([]Profile, error) {
	users, err := uc.repo.List(ctx)
	if err != nil {
		uc.log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	profiles := make([]Profile, 0, len(users))
	for i := range users {
		p, err := uc.ToProfile(&users[i])
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}

	uc.log.Debug("listed users", zap.Int("count", len(profiles)))
	return profiles, nil
}

// UpdateUser replaces username, age and hobbies of an existing user.
// Friends and the creation timestamp are never modified here. Username
// uniqueness is deliberately not re-checked against other users on update;
// only the storage unique index guards it.
func (uc *usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*Profile, error) {
	uc.log.Info("updating user", zap.String("id", in.ID.String()), zap.String("username", in.Username))

	if err := uc.validate.Struct(in); err != nil {
		uc.log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		uc.log.Warn("user not found for update", zap.String("id", in.ID.String()), zap.Error(err))
		return nil, err
	}

	u.Username = in.Username
	u.Age = in.Age
	u.Hobbies = domain.NormalizeHobbies(in.Hobbies)

	if err := uc.repo.Update(ctx, u); err != nil {
		uc.log.Error("failed to update user", zap.String("id", in.ID.String()), zap.Error(err))
		return nil, err
	}

	uc.log.Info("user updated", zap.String("id", in.ID.String()))
	return uc.ToProfile(u)
}

// DeleteUser removes a user that has no remaining friends. A user with a
// non-empty friend set cannot be deleted; callers must unlink first.
// Deletion never cascades into other users' friend sets.
func (uc *usecase) DeleteUser(ctx context.Context, id uuid.UUID) error {
	uc.log.Info("deleting user", zap.String("id", id.String()))

	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		uc.log.Warn("user not found for delete", zap.String("id", id.String()), zap.Error(err))
		return err
	}

	if len(u.Friends) > 0 {
		uc.log.Warn("cannot delete user with friends",
			zap.String("id", id.String()),
			zap.Int("friend_count", len(u.Friends)),
		)
		return apperrors.NewConflictError("Unlink user from friends before deletion")
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.log.Error("failed to delete user", zap.String("id", id.String()), zap.Error(err))
		return err
	}

	uc.log.Info("user deleted", zap.String("id", id.String()))
	return nil
}

// asFriendNotFound rewrites a user-lookup miss for the second id of a pair
// operation. Distinguishing "user" from "friend" is cosmetic only; both are
// the same not-found condition.
func asFriendNotFound(err error) error {
	var nf *apperrors.NotFoundError
	if errors.As(err, &nf) {
		return apperrors.NewNotFoundError("friend", "Friend not found")
	}
	return err
}
