package user

import (
	"context"

	"go.uber.org/zap"

	domain "social-graph-service/internal/domain/user"
	apperrors "social-graph-service/pkg/errors"
)

// PopularityScore computes the derived popularity metric for a user from
// its current friend and hobby sets. The score is never cached or stored.
func (uc *usecase) PopularityScore(u *domain.User) (float64, error) {
	if u == nil {
		uc.log.Error("popularity score requested for nil user")
		return 0, apperrors.NewValidationError("user", "user cannot be nil")
	}
	return domain.PopularityScore(u), nil
}

// GraphData exports the whole graph: one node per user with a freshly
// computed popularity score, and one edge per directed observation of a
// friendship. The relation is symmetric, so every friendship yields two
// edges; consumers that want undirected edges deduplicate on their side.
func (uc *usecase) GraphData(ctx context.Context) (*GraphResponse, error) {
	uc.log.Info("generating graph data")

	users, err := uc.repo.List(ctx)
	if err != nil {
		uc.log.Error("failed to load users for graph", zap.Error(err))
		return nil, err
	}

	nodes := make([]GraphNode, 0, len(users))
	edges := make([]GraphEdge, 0)
	for i := range users {
		u := &users[i]
		nodes = append(nodes, GraphNode{
			ID:              u.ID.String(),
			Username:        u.Username,
			Age:             u.Age,
			PopularityScore: domain.PopularityScore(u),
		})
		for _, f := range u.Friends {
			edges = append(edges, GraphEdge{
				Source: u.ID.String(),
				Target: f.ID.String(),
			})
		}
	}

	uc.log.Info("graph data generated", zap.Int("nodes", len(nodes)), zap.Int("edges", len(edges)))
	return &GraphResponse{Nodes: nodes, Edges: edges}, nil
}

// ToProfile maps a user entity to its external-facing projection: friend
// ids only, hobbies as a set, and a popularity score computed right here
// from the entity's current state.
func (uc *usecase) ToProfile(u *domain.User) (*Profile, error) {
	if u == nil {
		uc.log.Error("profile mapping requested for nil user")
		return nil, apperrors.NewValidationError("user", "user cannot be nil")
	}

	hobbies := u.Hobbies
	if hobbies == nil {
		hobbies = []string{}
	}

	return &Profile{
		ID:              u.ID,
		Username:        u.Username,
		Age:             u.Age,
		Hobbies:         hobbies,
		PopularityScore: domain.PopularityScore(u),
		FriendIDs:       u.FriendIDs(),
	}, nil
}
