package user

import "github.com/google/uuid"

// CreateUserRequest represents the request payload for creating a new user.
// Identifier and creation timestamp are always assigned by the service;
// callers cannot supply them.
type CreateUserRequest struct {
	Username string   `validate:"required,min=1,max=100"`
	Age      int      `validate:"required,min=1"`
	Hobbies  []string `validate:"omitempty,dive,max=100"`
}

// UpdateUserRequest represents the request payload for updating an existing
// user. Username, age and hobbies are replaced wholesale; friends and the
// creation timestamp are never touched by an update.
type UpdateUserRequest struct {
	ID       uuid.UUID `validate:"required"`
	Username string    `validate:"required,min=1,max=100"`
	Age      int       `validate:"required,min=1"`
	Hobbies  []string  `validate:"omitempty,dive,max=100"`
}

// Profile is the external-facing projection of a user: friend ids only,
// never nested friend objects, and a popularity score computed at mapping
// time from current state.
type Profile struct {
	ID              uuid.UUID   `json:"id"`
	Username        string      `json:"username"`
	Age             int         `json:"age"`
	Hobbies         []string    `json:"hobbies"`
	PopularityScore float64     `json:"popularityScore"`
	FriendIDs       []uuid.UUID `json:"friendIds"`
}

// GraphNode is a single user in the graph export.
type GraphNode struct {
	ID              string  `json:"id"`
	Username        string  `json:"username"`
	Age             int     `json:"age"`
	PopularityScore float64 `json:"popularityScore"`
}

// GraphEdge is one directed observation of a friendship. Because the
// relation is symmetric, every friendship appears twice, once per direction.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// GraphResponse is the whole-graph export consumed by the visualization.
type GraphResponse struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
