package user

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "social-graph-service/pkg/errors"
)

// LinkUsers makes two distinct existing users friends of each other.
// The self-link check runs before either id is resolved, so linking a user
// to itself fails with a conflict regardless of the user's existence.
// Re-linking an existing pair is a conflict, not a no-op. Both directed
// edges are written by the repository in a single transaction so the
// symmetry invariant holds even under concurrent callers.
func (uc *usecase) LinkUsers(ctx context.Context, userID, friendID uuid.UUID) error {
	uc.log.Info("linking users",
		zap.String("user_id", userID.String()),
		zap.String("friend_id", friendID.String()),
	)

	if userID == friendID {
		uc.log.Warn("attempted to link user to self", zap.String("id", userID.String()))
		return apperrors.NewConflictError("Cannot link user to self")
	}

	u, err := uc.repo.GetByID(ctx, userID)
	if err != nil {
		uc.log.Warn("user not found for link", zap.String("id", userID.String()), zap.Error(err))
		return err
	}
	if _, err := uc.repo.GetByID(ctx, friendID); err != nil {
		uc.log.Warn("friend not found for link", zap.String("id", friendID.String()), zap.Error(err))
		return asFriendNotFound(err)
	}

	if u.HasFriend(friendID) {
		uc.log.Warn("users are already friends",
			zap.String("user_id", userID.String()),
			zap.String("friend_id", friendID.String()),
		)
		return apperrors.NewConflictError("Users are already friends")
	}

	if err := uc.repo.Link(ctx, userID, friendID); err != nil {
		uc.log.Error("failed to link users",
			zap.String("user_id", userID.String()),
			zap.String("friend_id", friendID.String()),
			zap.Error(err),
		)
		return err
	}

	uc.log.Info("users linked",
		zap.String("user_id", userID.String()),
		zap.String("friend_id", friendID.String()),
	)
	return nil
}

// UnlinkUsers removes the friendship between two users. Unlinking users
// that are not currently friends is a conflict. Both directed edges are
// removed in a single transaction, mirroring LinkUsers.
func (uc *usecase) UnlinkUsers(ctx context.Context, userID, friendID uuid.UUID) error {
	uc.log.Info("unlinking users",
		zap.String("user_id", userID.String()),
		zap.String("friend_id", friendID.String()),
	)

	u, err := uc.repo.GetByID(ctx, userID)
	if err != nil {
		uc.log.Warn("user not found for unlink", zap.String("id", userID.String()), zap.Error(err))
		return err
	}
	if _, err := uc.repo.GetByID(ctx, friendID); err != nil {
		uc.log.Warn("friend not found for unlink", zap.String("id", friendID.String()), zap.Error(err))
		return asFriendNotFound(err)
	}

	if !u.HasFriend(friendID) {
		uc.log.Warn("users are not friends",
			zap.String("user_id", userID.String()),
			zap.String("friend_id", friendID.String()),
		)
		return apperrors.NewConflictError("Users are not friends")
	}

	if err := uc.repo.Unlink(ctx, userID, friendID); err != nil {
		uc.log.Error("failed to unlink users",
			zap.String("user_id", userID.String()),
			zap.String("friend_id", friendID.String()),
			zap.Error(err),
		)
		return err
	}

	uc.log.Info("users unlinked",
		zap.String("user_id", userID.String()),
		zap.String("friend_id", friendID.String()),
	)
	return nil
}
