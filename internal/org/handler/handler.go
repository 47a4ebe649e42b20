package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oticonnect/backend/internal/org/repository"
	"github.com/oticonnect/backend/internal/org/service"
	"github.com/oticonnect/backend/internal/org/workflow"
)

// Handlers handler collection
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Division   *DivisionHandler
	Event      *EventHandler
	Room       *RoomHandler
	Feedback   *FeedbackHandler
	Transition *TransitionHandler
	Report     *ReportHandler
	SSE        *SSEHandler
}

// NewHandlers wires handlers over the service collection
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Division:   NewDivisionHandler(svc.Division),
		Event:      NewEventHandler(svc.Event),
		Room:       NewRoomHandler(svc.Room),
		Feedback:   NewFeedbackHandler(svc.Feedback),
		Transition: NewTransitionHandler(svc.Transition),
		Report:     NewReportHandler(svc.Report),
		SSE:        NewSSEHandler(),
	}
}

// Response common response envelope
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse paginated listing envelope
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination paging info
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Success 200 response
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 201 response
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes a business code; the HTTP status is the code prefix
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest invalid parameters
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized missing or invalid credentials
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden actor lacks permission
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound entity does not exist
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError unexpected failure
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// WriteError maps a service error onto the response taxonomy.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, workflow.ErrPermissionDenied):
		Forbidden(c, err.Error())
	case errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrValidation):
		BadRequest(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID reads the authenticated user id from the context
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetActor resolves the authenticated principal set by the JWT middleware.
func GetActor(c *gin.Context) workflow.Actor {
	actor := workflow.Actor{ID: GetUserID(c)}
	if role, ok := c.Get("user_role"); ok {
		if r, ok := role.(string); ok {
			actor.Role = r
		}
	}
	return actor
}

// GetPagination reads paging query parameters
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
