// Package api exposes the task list over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"done/models"
	"done/state"
)

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-ID"

// NewRouter returns a gin engine serving the task list held by m.
func NewRouter(m *state.Manager, logger *log.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(logger))

	// GET /tasks - Current state
	r.GET("/tasks", func(c *gin.Context) {
		c.JSON(http.StatusOK, m.Snapshot())
	})

	// POST /tasks - Add a task
	r.POST("/tasks", func(c *gin.Context) {
		var input struct {
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		if strings.TrimSpace(input.Description) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Description is required"})
			return
		}

		task, err := m.AddTask(c.Request.Context(), input.Description)
		if abortOnStateError(c, err) {
			return
		}
		body := gin.H{"task": task}
		addWarning(body, err)
		c.JSON(http.StatusCreated, body)
	})

	// PATCH /tasks/:id/toggle - Flip completion
	r.PATCH("/tasks/:id/toggle", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		list, changed, err := m.ToggleTask(c.Request.Context(), id)
		if abortOnStateError(c, err) {
			return
		}
		respondChange(c, changed, list, err)
	})

	// DELETE /tasks/:id - Remove a task
	r.DELETE("/tasks/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		list, changed, err := m.DeleteTask(c.Request.Context(), id)
		if abortOnStateError(c, err) {
			return
		}
		respondChange(c, changed, list, err)
	})

	return r
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return 0, false
	}
	return id, true
}

// abortOnStateError writes a response for errors that prevented the
// operation. Storage warnings are not among them.
func abortOnStateError(c *gin.Context, err error) bool {
	if err == nil || errors.Is(err, state.ErrStorageUnavailable) {
		return false
	}
	if errors.Is(err, state.ErrNotInitialized) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Task list not loaded"})
		return true
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task list"})
	return true
}

func respondChange(c *gin.Context, changed bool, list models.TaskList, err error) {
	body := gin.H{"changed": changed, "list": list}
	addWarning(body, err)
	c.JSON(http.StatusOK, body)
}

func addWarning(body gin.H, err error) {
	if err != nil {
		body["warning"] = "Change not saved: " + err.Error()
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"requestID", c.GetString("requestID"),
		)
	}
}
