package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	domain "social-graph-service/internal/domain/user"
	usecase "social-graph-service/internal/usecase/user"
	apperrors "social-graph-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) CreateUser(ctx context.Context, in usecase.CreateUserRequest) (*usecase.Profile, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Profile), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, id uuid.UUID) (*usecase.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Profile), args.Error(1)
}

func (m *MockUserUsecase) ListUsers(ctx context.Context) ([]usecase.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]usecase.Profile), args.Error(1)
}

func (m *MockUserUsecase) UpdateUser(ctx context.Context, in usecase.UpdateUserRequest) (*usecase.Profile, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Profile), args.Error(1)
}

func (m *MockUserUsecase) DeleteUser(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserUsecase) LinkUsers(ctx context.Context, userID, friendID uuid.UUID) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *MockUserUsecase) UnlinkUsers(ctx context.Context, userID, friendID uuid.UUID) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *MockUserUsecase) PopularityScore(u *domain.User) (float64, error) {
	args := m.Called(u)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockUserUsecase) GraphData(ctx context.Context) (*usecase.GraphResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.GraphResponse), args.Error(1)
}

func (m *MockUserUsecase) ToProfile(u *domain.User) (*usecase.Profile, error) {
	args := m.Called(u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Profile), args.Error(1)
}

func setupTest(t *testing.T) (*gin.Engine, *UserHandler, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	logger := zaptest.NewLogger(t)
	handler := NewUserHandler(mockUsecase, logger)

	r := gin.New()
	return r, handler, mockUsecase
}

func sampleProfile() *usecase.Profile {
	return &usecase.Profile{
		ID:              uuid.New(),
		Username:        "alice",
		Age:             30,
		Hobbies:         []string{"chess", "reading"},
		PopularityScore: 0,
		FriendIDs:       []uuid.UUID{},
	}
}

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/api/users", handler.CreateUser)

		reqBody := CreateUserRequest{
			Username: "alice",
			Age:      30,
			Hobbies:  []string{"chess"},
		}
		jsonBody, _ := json.Marshal(reqBody)

		profile := sampleProfile()
		mockUsecase.On("CreateUser", mock.Anything, mock.MatchedBy(func(in usecase.CreateUserRequest) bool {
			return in.Username == "alice" && in.Age == 30
		})).Return(profile, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/users", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp usecase.Profile
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, profile.ID, resp.ID)
		assert.Equal(t, "alice", resp.Username)
	})

	t.Run("Invalid Request Body", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.POST("/api/users", handler.CreateUser)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/users", bytes.NewBufferString("invalid json"))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing Username", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.POST("/api/users", handler.CreateUser)

		jsonBody, _ := json.Marshal(map[string]any{"age": 30})

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/users", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Duplicate Username", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/api/users", handler.CreateUser)

		reqBody := CreateUserRequest{Username: "alice", Age: 30}
		jsonBody, _ := json.Marshal(reqBody)

		mockUsecase.On("CreateUser", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewConflictError("Username already exists"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/users", bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "conflict", resp.Error)
		assert.Equal(t, "Username already exists", resp.Message)
	})
}

func TestGetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/api/users/:id", handler.GetUser)

		profile := sampleProfile()
		mockUsecase.On("GetUser", mock.Anything, profile.ID).Return(profile, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/users/"+profile.ID.String(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp usecase.Profile
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, profile.ID, resp.ID)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/api/users/:id", handler.GetUser)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/users/not-a-uuid", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsecase.AssertNotCalled(t, "GetUser")
	})

	t.Run("Not Found", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/api/users/:id", handler.GetUser)

		id := uuid.New()
		mockUsecase.On("GetUser", mock.Anything, id).
			Return(nil, apperrors.NewNotFoundError("user", "User not found"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/users/"+id.String(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_found", resp.Error)
		assert.Equal(t, "User not found", resp.Message)
	})
}

func TestListUsers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/api/users", handler.ListUsers)

		profiles := []usecase.Profile{*sampleProfile(), *sampleProfile()}
		mockUsecase.On("ListUsers", mock.Anything).Return(profiles, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/users", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp []usecase.Profile
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
	})

	t.Run("Empty", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/api/users", handler.ListUsers)

		mockUsecase.On("ListUsers", mock.Anything).Return([]usecase.Profile{}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/users", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})
}

func TestUpdateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.PUT("/api/users/:id", handler.UpdateUser)

		profile := sampleProfile()
		reqBody := UpdateUserRequest{Username: "alice2", Age: 31, Hobbies: []string{"chess"}}
		jsonBody, _ := json.Marshal(reqBody)

		mockUsecase.On("UpdateUser", mock.Anything, mock.MatchedBy(func(in usecase.UpdateUserRequest) bool {
			return in.ID == profile.ID && in.Username == "alice2" && in.Age == 31
		})).Return(profile, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/api/users/"+profile.ID.String(), bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.PUT("/api/users/:id", handler.UpdateUser)

		jsonBody, _ := json.Marshal(UpdateUserRequest{Username: "alice", Age: 30})
		id := uuid.New()

		mockUsecase.On("UpdateUser", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewNotFoundError("user", "User not found"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("PUT", "/api/users/"+id.String(), bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.DELETE("/api/users/:id", handler.DeleteUser)

		id := uuid.New()
		mockUsecase.On("DeleteUser", mock.Anything, id).Return(nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/api/users/"+id.String(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Conflict With Friends", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.DELETE("/api/users/:id", handler.DeleteUser)

		id := uuid.New()
		mockUsecase.On("DeleteUser", mock.Anything, id).
			Return(apperrors.NewConflictError("Unlink user from friends before deletion"))

		w := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/api/users/"+id.String(), nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp ErrorResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Unlink user from friends before deletion", resp.Message)
	})
}

func TestLinkUsers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/api/users/:id/link", handler.LinkUsers)

		userID := uuid.New()
		friendID := uuid.New()
		mockUsecase.On("LinkUsers", mock.Anything, userID, friendID).Return(nil)

		w := httptest.NewRecorder()
		url := fmt.Sprintf("/api/users/%s/link?friendId=%s", userID, friendID)
		req := httptest.NewRequest("POST", url, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Missing FriendID", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/api/users/:id/link", handler.LinkUsers)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/users/"+uuid.New().String()+"/link", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsecase.AssertNotCalled(t, "LinkUsers")
	})

	t.Run("Self Link Conflict", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/api/users/:id/link", handler.LinkUsers)

		id := uuid.New()
		mockUsecase.On("LinkUsers", mock.Anything, id, id).
			Return(apperrors.NewConflictError("Cannot link user to self"))

		w := httptest.NewRecorder()
		url := fmt.Sprintf("/api/users/%s/link?friendId=%s", id, id)
		req := httptest.NewRequest("POST", url, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Friend Not Found", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/api/users/:id/link", handler.LinkUsers)

		userID := uuid.New()
		friendID := uuid.New()
		mockUsecase.On("LinkUsers", mock.Anything, userID, friendID).
			Return(apperrors.NewNotFoundError("user", "Friend not found"))

		w := httptest.NewRecorder()
		url := fmt.Sprintf("/api/users/%s/link?friendId=%s", userID, friendID)
		req := httptest.NewRequest("POST", url, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUnlinkUsers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.DELETE("/api/users/:id/unlink", handler.UnlinkUsers)

		userID := uuid.New()
		friendID := uuid.New()
		mockUsecase.On("UnlinkUsers", mock.Anything, userID, friendID).Return(nil)

		w := httptest.NewRecorder()
		url := fmt.Sprintf("/api/users/%s/unlink?friendId=%s", userID, friendID)
		req := httptest.NewRequest("DELETE", url, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Not Friends Conflict", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.DELETE("/api/users/:id/unlink", handler.UnlinkUsers)

		userID := uuid.New()
		friendID := uuid.New()
		mockUsecase.On("UnlinkUsers", mock.Anything, userID, friendID).
			Return(apperrors.NewConflictError("Users are not friends"))

		w := httptest.NewRecorder()
		url := fmt.Sprintf("/api/users/%s/unlink?friendId=%s", userID, friendID)
		req := httptest.NewRequest("DELETE", url, nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestGetGraph(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/api/users/graph", handler.GetGraph)

		a := uuid.New().String()
		b := uuid.New().String()
		graph := &usecase.GraphResponse{
			Nodes: []usecase.GraphNode{
				{ID: a, Username: "alice", Age: 30, PopularityScore: 1.5},
				{ID: b, Username: "bob", Age: 25, PopularityScore: 1.5},
			},
			Edges: []usecase.GraphEdge{
				{Source: a, Target: b},
				{Source: b, Target: a},
			},
		}
		mockUsecase.On("GraphData", mock.Anything).Return(graph, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/users/graph", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp usecase.GraphResponse
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Nodes, 2)
		assert.Len(t, resp.Edges, 2)
	})
}
