package handler

import (
	"net/http"

	"social-graph-service/internal/usecase/user"
	apperrors "social-graph-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user and friendship operations.
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user.
type CreateUserRequest struct {
	Username string   `json:"username" binding:"required,min=1,max=100"`
	Age      int      `json:"age" binding:"required,min=1"`
	Hobbies  []string `json:"hobbies"`
}

// UpdateUserRequest represents the HTTP request body for updating a user.
// Username, age and hobbies are replaced wholesale.
type UpdateUserRequest struct {
	Username string   `json:"username" binding:"required,min=1,max=100"`
	Age      int      `json:"age" binding:"required,min=1"`
	Hobbies  []string `json:"hobbies"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	h.log.Info("CreateUser request", zap.String("username", req.Username), zap.Int("age", req.Age))

	profile, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Username: req.Username,
		Age:      req.Age,
		Hobbies:  req.Hobbies,
	})
	if err != nil {
		h.log.Error("CreateUser failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetUser handles GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}

	profile, err := h.uc.GetUser(c.Request.Context(), id)
	if err != nil {
		h.log.Error("GetUser failed", zap.String("id", id.String()), zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	profiles, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error("ListUsers failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// UpdateUser handles PUT /api/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid update user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	h.log.Info("UpdateUser request", zap.String("id", id.String()), zap.String("username", req.Username))

	profile, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{
		ID:       id,
		Username: req.Username,
		Age:      req.Age,
		Hobbies:  req.Hobbies,
	})
	if err != nil {
		h.log.Error("UpdateUser failed", zap.String("id", id.String()), zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteUser handles DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}

	h.log.Info("DeleteUser request", zap.String("id", id.String()))

	if err := h.uc.DeleteUser(c.Request.Context(), id); err != nil {
		h.log.Error("DeleteUser failed", zap.String("id", id.String()), zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id.String()})
}

// LinkUsers handles POST /api/users/:id/link?friendId=<uuid>
func (h *UserHandler) LinkUsers(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}
	friendID, ok := h.parseFriendID(c)
	if !ok {
		return
	}

	h.log.Info("LinkUsers request", zap.String("id", id.String()), zap.String("friend_id", friendID.String()))

	if err := h.uc.LinkUsers(c.Request.Context(), id, friendID); err != nil {
		h.log.Error("LinkUsers failed",
			zap.String("id", id.String()),
			zap.String("friend_id", friendID.String()),
			zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id.String(), "friendId": friendID.String()})
}

// UnlinkUsers handles DELETE /api/users/:id/unlink?friendId=<uuid>
func (h *UserHandler) UnlinkUsers(c *gin.Context) {
	id, ok := h.parseID(c, c.Param("id"))
	if !ok {
		return
	}
	friendID, ok := h.parseFriendID(c)
	if !ok {
		return
	}

	h.log.Info("UnlinkUsers request", zap.String("id", id.String()), zap.String("friend_id", friendID.String()))

	if err := h.uc.UnlinkUsers(c.Request.Context(), id, friendID); err != nil {
		h.log.Error("UnlinkUsers failed",
			zap.String("id", id.String()),
			zap.String("friend_id", friendID.String()),
			zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id.String(), "friendId": friendID.String()})
}

// GetGraph handles GET /api/users/graph
func (h *UserHandler) GetGraph(c *gin.Context) {
	graph, err := h.uc.GraphData(c.Request.Context())
	if err != nil {
		h.log.Error("GetGraph failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, graph)
}

func (h *UserHandler) parseID(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		h.log.Warn("Invalid user ID", zap.String("id", raw), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "User ID must be a valid UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *UserHandler) parseFriendID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Query("friendId")
	if raw == "" {
		h.log.Warn("Missing friendId query parameter")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "friendId query parameter is required",
		})
		return uuid.Nil, false
	}

	friendID, err := uuid.Parse(raw)
	if err != nil {
		h.log.Warn("Invalid friend ID", zap.String("friendId", raw), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "friendId must be a valid UUID",
		})
		return uuid.Nil, false
	}
	return friendID, true
}

// handleError converts usecase errors to HTTP responses using the status
// carried by the typed errors in pkg/errors.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	if statuser, ok := err.(apperrors.HTTPStatuser); ok {
		status := statuser.HTTPStatus()
		code := "internal_error"
		message := err.Error()
		switch status {
		case http.StatusNotFound:
			code = "not_found"
		case http.StatusConflict:
			code = "conflict"
		case http.StatusBadRequest:
			code = "validation_error"
		default:
			message = "An internal error occurred"
		}
		c.JSON(status, ErrorResponse{
			Error:   code,
			Message: message,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
