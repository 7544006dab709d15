package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/digitalrehman/secure-todo-flow/internal/domain"
	"github.com/digitalrehman/secure-todo-flow/internal/http/middleware"
	"github.com/digitalrehman/secure-todo-flow/internal/service"
)

// TodoHandler exposes the todo endpoints. Every route sits behind the auth
// middleware, so a user id is always present.
type TodoHandler struct {
	Todos *service.TodoService
}

func NewTodoHandler(todos *service.TodoService) *TodoHandler {
	return &TodoHandler{Todos: todos}
}

// List handles GET /todos with optional filter and sortBy query parameters.
func (h *TodoHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	filter := domain.ParseFilter(c.Query("filter"))
	key := domain.ParseSortKey(c.Query("sortBy"))

	todos, err := h.Todos.List(c.Request.Context(), userID, filter, key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

// Create handles POST /todos.
func (h *TodoHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Priority    string     `json:"priority"`
		DueDate     *time.Time `json:"dueDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Title is required."})
		return
	}

	todo, err := h.Todos.Create(c.Request.Context(), userID, service.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, todo)
}

// Get handles GET /todos/:id.
func (h *TodoHandler) Get(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	todo, err := h.Todos.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// Update handles PUT /todos/:id. Absent fields keep their old values.
func (h *TodoHandler) Update(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Completed   *bool      `json:"completed"`
		Priority    *string    `json:"priority"`
		DueDate     *time.Time `json:"dueDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid update payload."})
		return
	}

	todo, err := h.Todos.Update(c.Request.Context(), userID, c.Param("id"), service.UpdateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// Toggle handles PATCH /todos/:id/toggle.
func (h *TodoHandler) Toggle(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	todo, err := h.Todos.Toggle(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// Delete handles DELETE /todos/:id.
func (h *TodoHandler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		unauthenticated(c)
		return
	}

	if err := h.Todos.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Todo removed"})
}

func unauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated", "error_description": "Authentication required."})
}
