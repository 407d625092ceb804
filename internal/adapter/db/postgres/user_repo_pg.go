package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "social-graph-service/internal/domain/user"
	apperrors "social-graph-service/pkg/errors"
)

// UserRepoPG implements the Repository interface using PostgreSQL and GORM.
type UserRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
// Hobbies are stored as a JSON-serialized set; friendships live in their
// own edge table with two directed rows per friendship, which makes the
// symmetry invariant a storage fact rather than a convention.
type UserSchema struct {
	ID        string       `gorm:"primaryKey;size:36"`
	Username  string       `gorm:"not null;uniqueIndex"`
	Age       int          `gorm:"not null"`
	Hobbies   []string     `gorm:"serializer:json"`
	Friends   []UserSchema `gorm:"many2many:friendships;joinForeignKey:UserID;joinReferences:FriendID"`
	CreatedAt time.Time    `gorm:"not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// FriendshipSchema is one directed edge of the friendship relation.
// The composite primary key rejects duplicate edges at the storage level.
type FriendshipSchema struct {
	UserID   string `gorm:"primaryKey;size:36"`
	FriendID string `gorm:"primaryKey;size:36"`
}

// TableName specifies the table name for the FriendshipSchema model.
func (FriendshipSchema) TableName() string {
	return "friendships"
}

// Migrate creates or updates the users and friendships tables.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&UserSchema{}, "Friends", &FriendshipSchema{}); err != nil {
		return fmt.Errorf("failed to set up friendships join table: %w", err)
	}
	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-constraint failure.
// Matches both the PostgreSQL and the SQLite (test) driver wording.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func toDomain(m *UserSchema, withFriends bool) *domain.User {
	id, _ := uuid.Parse(m.ID)
	u := &domain.User{
		ID:        id,
		Username:  m.Username,
		Age:       m.Age,
		Hobbies:   m.Hobbies,
		CreatedAt: m.CreatedAt,
	}
	if u.Hobbies == nil {
		u.Hobbies = []string{}
	}
	if withFriends {
		u.Friends = make([]domain.User, 0, len(m.Friends))
		for i := range m.Friends {
			// friends are mapped one level deep, without their own friends
			u.Friends = append(u.Friends, *toDomain(&m.Friends[i], false))
		}
	}
	return u
}

// Create inserts a new user into the database.
func (r *UserRepoPG) Create(ctx context.Context, u *domain.User) error {
	if u == nil {
		return apperrors.NewValidationError("user", "user cannot be nil")
	}

	model := UserSchema{
		ID:        u.ID.String(),
		Username:  u.Username,
		Age:       u.Age,
		Hobbies:   u.Hobbies,
		CreatedAt: u.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Omit("Friends").Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("duplicate username on create", zap.String("username", u.Username))
			return apperrors.NewConflictError("Username already exists")
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("username", u.Username))
		return apperrors.NewInternalError("failed to create user", err)
	}

	r.log.Info("user created in db", zap.String("id", model.ID))
	return nil
}

// GetByID retrieves a user by ID with friends loaded one level deep.
func (r *UserRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).
		Preload("Friends").
		First(&model, "id = ?", id.String()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Warn("user not found", zap.String("id", id.String()))
			return nil, apperrors.NewNotFoundError("user", "User not found")
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id.String()))
		return nil, apperrors.NewInternalError("failed to get user", err)
	}

	return toDomain(&model, true), nil
}

// GetByUsername retrieves a user by username. A missing username is not an
// error; it returns nil so callers can use this as an existence check.
func (r *UserRepoPG) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by username", zap.String("username", username))
			return nil, nil
		}
		r.log.Error("failed to get user by username from db", zap.Error(err), zap.String("username", username))
		return nil, apperrors.NewInternalError("failed to get user by username", err)
	}

	return toDomain(&model, false), nil
}

// Update replaces username, age and hobbies of an existing user. Friend
// edges and the creation timestamp are never written by an update.
func (r *UserRepoPG) Update(ctx context.Context, u *domain.User) error {
	if u == nil {
		return apperrors.NewValidationError("user", "user cannot be nil")
	}

	err := r.db.WithContext(ctx).
		Model(&UserSchema{}).
		Where("id = ?", u.ID.String()).
		Select("username", "age", "hobbies").
		Updates(UserSchema{
			Username: u.Username,
			Age:      u.Age,
			Hobbies:  u.Hobbies,
		}).Error
	if err != nil {
		if isUniqueViolation(err) {
			r.log.Warn("duplicate username on update", zap.String("username", u.Username))
			return apperrors.NewConflictError("Username already exists")
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.String("id", u.ID.String()))
		return apperrors.NewInternalError("failed to update user", err)
	}

	r.log.Info("user updated in db", zap.String("id", u.ID.String()))
	return nil
}

// Delete removes a user from the database by ID. Friend edges are not
// cascaded here; the business rule upstream guarantees there are none.
func (r *UserRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&UserSchema{}, "id = ?", id.String()).Error; err != nil {
		r.log.Error("failed to delete user in db", zap.Error(err), zap.String("id", id.String()))
		return apperrors.NewInternalError("failed to delete user", err)
	}

	r.log.Info("user deleted in db", zap.String("id", id.String()))
	return nil
}

// List retrieves every user with friends loaded one level deep.
func (r *UserRepoPG) List(ctx context.Context) ([]domain.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Preload("Friends").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]domain.User, 0, len(models))
	for i := range models {
		users = append(users, *toDomain(&models[i], true))
	}

	return users, nil
}

// lockUserPair loads both user rows inside tx, locked in canonical id order
// so concurrent link/unlink calls on the same pair serialize instead of
// deadlocking. Returns a not-found error unless both rows exist.
func (r *UserRepoPG) lockUserPair(tx *gorm.DB, userID, friendID uuid.UUID) error {
	a, b := userID.String(), friendID.String()
	if a > b {
		a, b = b, a
	}

	q := tx.Model(&UserSchema{})
	// SQLite (tests) serializes writers on its own and rejects FOR UPDATE
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var ids []string
	if err := q.Where("id IN ?", []string{a, b}).Order("id").Pluck("id", &ids).Error; err != nil {
		return apperrors.NewInternalError("failed to lock user pair", err)
	}
	if len(ids) != 2 {
		return apperrors.NewNotFoundError("user", "User not found")
	}
	return nil
}

// Link writes both directed edges of a friendship in a single transaction.
// The edge table's composite primary key turns a racing duplicate link into
// a conflict instead of corrupt state.
func (r *UserRepoPG) Link(ctx context.Context, userID, friendID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockUserPair(tx, userID, friendID); err != nil {
			return err
		}

		edges := []FriendshipSchema{
			{UserID: userID.String(), FriendID: friendID.String()},
			{UserID: friendID.String(), FriendID: userID.String()},
		}
		if err := tx.Create(&edges).Error; err != nil {
			if isUniqueViolation(err) {
				return apperrors.NewConflictError("Users are already friends")
			}
			return apperrors.NewInternalError("failed to link users", err)
		}
		return nil
	})
	if err != nil {
		r.log.Warn("link failed in db",
			zap.String("user_id", userID.String()),
			zap.String("friend_id", friendID.String()),
			zap.Error(err),
		)
		return err
	}

	r.log.Info("users linked in db",
		zap.String("user_id", userID.String()),
		zap.String("friend_id", friendID.String()),
	)
	return nil
}

// Unlink removes both directed edges of a friendship in a single
// transaction, using the same pair locking as Link.
func (r *UserRepoPG) Unlink(ctx context.Context, userID, friendID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.lockUserPair(tx, userID, friendID); err != nil {
			return err
		}

		res := tx.Where(
			"(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userID.String(), friendID.String(),
			friendID.String(), userID.String(),
		).Delete(&FriendshipSchema{})
		if res.Error != nil {
			return apperrors.NewInternalError("failed to unlink users", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.NewConflictError("Users are not friends")
		}
		return nil
	})
	if err != nil {
		r.log.Warn("unlink failed in db",
			zap.String("user_id", userID.String()),
			zap.String("friend_id", friendID.String()),
			zap.Error(err),
		)
		return err
	}

	r.log.Info("users unlinked in db",
		zap.String("user_id", userID.String()),
		zap.String("friend_id", friendID.String()),
	)
	return nil
}
