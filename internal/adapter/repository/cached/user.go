package cached

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"social-graph-service/internal/adapter/cache"
	domain "social-graph-service/internal/domain/user"
	"social-graph-service/internal/usecase/user"
)

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
// Every mutation invalidates the affected entries; link and unlink
// invalidate BOTH sides of the pair, since each user's cached entry embeds
// its friends one level deep.
type CachedUserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) user.Repository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the DB repository.
func (r *CachedUserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.dbRepo.Create(ctx, u)
}

// GetByID retrieves a user by ID using the cache-aside pattern.
func (r *CachedUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			r.log.Warn("cache get error, falling back to database", zap.String("id", id.String()), zap.Error(err))
		} else if cachedUser != nil {
			r.log.Debug("user retrieved from cache", zap.String("id", id.String()))
			return cachedUser, nil
		}
	}

	// Cache miss or cache disabled - use single-flight to prevent stampede
	result, err, _ := r.group.Do("user:"+id.String(), func() (any, error) {
		// Double-check cache in case another request populated it while we were waiting
		if r.cache != nil {
			cachedUser, err := r.cache.Get(ctx, id)
			if err == nil && cachedUser != nil {
				return cachedUser, nil
			}
		}

		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.String("id", id.String()), zap.Error(err))
			}
		}

		return u, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*domain.User), nil
}

// GetByUsername delegates to the DB repository.
func (r *CachedUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.dbRepo.GetByUsername(ctx, username)
}

// Update updates the user in DB and invalidates the cached entry. Cached
// friends embed the user's username and hobbies one level deep, so the
// user's friends are invalidated as well.
func (r *CachedUserRepository) Update(ctx context.Context, u *domain.User) error {
	if err := r.dbRepo.Update(ctx, u); err != nil {
		return err
	}

	r.invalidate(ctx, append(u.FriendIDs(), u.ID)...)
	return nil
}

// Delete deletes the user from DB and invalidates the cache.
func (r *CachedUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.dbRepo.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, id)
	return nil
}

// List delegates to the DB repository.
func (r *CachedUserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.dbRepo.List(ctx)
}

// Link creates the friendship in DB and invalidates both sides.
func (r *CachedUserRepository) Link(ctx context.Context, userID, friendID uuid.UUID) error {
	if err := r.dbRepo.Link(ctx, userID, friendID); err != nil {
		return err
	}

	r.invalidate(ctx, userID, friendID)
	return nil
}

// Unlink removes the friendship in DB and invalidates both sides.
func (r *CachedUserRepository) Unlink(ctx context.Context, userID, friendID uuid.UUID) error {
	if err := r.dbRepo.Unlink(ctx, userID, friendID); err != nil {
		return err
	}

	r.invalidate(ctx, userID, friendID)
	return nil
}

// invalidate drops cache entries after a successful mutation. Failures are
// logged and swallowed: the store is the source of truth and entries expire
// by TTL anyway.
func (r *CachedUserRepository) invalidate(ctx context.Context, ids ...uuid.UUID) {
	if r.cache == nil {
		return
	}
	if err := r.cache.DeleteMultiple(ctx, ids...); err != nil {
		r.log.Warn("failed to invalidate cache", zap.Int("count", len(ids)), zap.Error(err))
	}
}
