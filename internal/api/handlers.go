package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dalfonso89/currency-converter/internal/converter"
	"github.com/dalfonso89/currency-converter/internal/logger"
	"github.com/dalfonso89/currency-converter/internal/middleware"
	"github.com/dalfonso89/currency-converter/internal/models"
	"github.com/dalfonso89/currency-converter/internal/ratelimit"
	"github.com/dalfonso89/currency-converter/internal/session"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HandlerConfig holds the dependencies of the HTTP handlers
type HandlerConfig struct {
	Logger      *logger.Logger
	Engine      *converter.Engine
	Sessions    *session.Store
	RateLimiter *ratelimit.Limiter
}

// Handlers contains all HTTP handlers
type Handlers struct {
	logger      *logger.Logger
	engine      *converter.Engine
	sessions    *session.Store
	rateLimiter *ratelimit.Limiter
	startTime   time.Time
}

// NewHandlers creates a new handlers instance
func NewHandlers(handlerConfig HandlerConfig) *Handlers {
	return &Handlers{
		logger:      handlerConfig.Logger,
		engine:      handlerConfig.Engine,
		sessions:    handlerConfig.Sessions,
		rateLimiter: handlerConfig.RateLimiter,
		startTime:   time.Now(),
	}
}

// SetupRoutes configures all the routes using Gin
func (handlers *Handlers) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(handlers.logger))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())

	if handlers.rateLimiter != nil {
		router.Use(middleware.RateLimit(handlers.rateLimiter, handlers.logger))
	}

	router.GET("/health", handlers.HealthCheck)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/convert", handlers.Convert)
		apiV1.POST("/convert", handlers.Convert)

		sessions := apiV1.Group("/sessions")
		sessions.POST("", handlers.CreateSession)
		sessions.GET("/:id", handlers.GetSession)
		sessions.PUT("/:id/input", handlers.EditSessionInput)
		sessions.POST("/:id/convert", handlers.ConvertSession)
		sessions.DELETE("/:id", handlers.DeleteSession)
	}

	return router
}

// HealthCheck handles health check requests
func (handlers *Handlers) HealthCheck(context *gin.Context) {
	healthCheckResponse := models.HealthCheck{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   Version,
		Uptime:    time.Since(handlers.startTime).String(),
	}
	if handlers.engine != nil {
		healthCheckResponse.Rate = handlers.engine.Rate().String()
	}

	context.JSON(http.StatusOK, healthCheckResponse)
}

// Convert runs a one-off conversion of the input query or body field
func (handlers *Handlers) Convert(context *gin.Context) {
	var request models.ConvertRequest
	if err := context.ShouldBind(&request); err != nil {
		handlers.writeErrorResponse(context, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	conversion, err := handlers.engine.Convert(request.Input)
	if err != nil {
		handlers.logger.WithField("input", request.Input).Debugf("Conversion rejected: %v", err)
		handlers.writeErrorResponse(context, http.StatusUnprocessableEntity, converter.InvalidInputMessage, err.Error())
		return
	}

	context.JSON(http.StatusOK, models.ConvertResponse{
		Input:     conversion.Input,
		Amount:    conversion.Amount.String(),
		Rate:      conversion.Rate.String(),
		Converted: conversion.Converted.StringFixed(2),
		Formatted: conversion.Formatted,
		Result:    conversion.Text,
	})
}

// CreateSession opens a new converter form
func (handlers *Handlers) CreateSession(context *gin.Context) {
	created := handlers.sessions.Create()
	context.JSON(http.StatusCreated, sessionResponse(created, nil))
}

// GetSession returns the state of a converter form
func (handlers *Handlers) GetSession(context *gin.Context) {
	found, ok := handlers.lookupSession(context)
	if !ok {
		return
	}
	context.JSON(http.StatusOK, sessionResponse(found, nil))
}

// EditSessionInput proposes new text for the form's amount field
func (handlers *Handlers) EditSessionInput(context *gin.Context) {
	found, ok := handlers.lookupSession(context)
	if !ok {
		return
	}

	var request models.EditInputRequest
	if err := context.ShouldBindJSON(&request); err != nil {
		handlers.writeErrorResponse(context, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	accepted := found.Form.Edit(*request.Text)
	if !accepted {
		handlers.logger.WithField("session", found.ID.String()).Debugf("Rejected edit %q", *request.Text)
	}

	context.JSON(http.StatusOK, sessionResponse(found, &accepted))
}

// ConvertSession presses the form's convert button
func (handlers *Handlers) ConvertSession(context *gin.Context) {
	found, ok := handlers.lookupSession(context)
	if !ok {
		return
	}

	found.Form.Convert()
	context.JSON(http.StatusOK, sessionResponse(found, nil))
}

// DeleteSession closes a converter form
func (handlers *Handlers) DeleteSession(context *gin.Context) {
	id, ok := handlers.sessionID(context)
	if !ok {
		return
	}

	if err := handlers.sessions.Delete(id); err != nil {
		handlers.writeSessionError(context, err)
		return
	}
	context.Status(http.StatusNoContent)
}

func (handlers *Handlers) sessionID(context *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(context.Param("id"))
	if err != nil {
		handlers.writeErrorResponse(context, http.StatusBadRequest, "Invalid session ID", "Session ID must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (handlers *Handlers) lookupSession(context *gin.Context) (*session.Session, bool) {
	id, ok := handlers.sessionID(context)
	if !ok {
		return nil, false
	}

	found, err := handlers.sessions.Get(id)
	if err != nil {
		handlers.writeSessionError(context, err)
		return nil, false
	}
	return found, true
}

func (handlers *Handlers) writeSessionError(context *gin.Context, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		handlers.writeErrorResponse(context, http.StatusNotFound, "Session not found", err.Error())
		return
	}
	handlers.logger.Errorf("Session lookup failed: %v", err)
	handlers.writeErrorResponse(context, http.StatusInternalServerError, "Session lookup failed", err.Error())
}

func sessionResponse(found *session.Session, accepted *bool) models.SessionResponse {
	state := found.Form.State()
	return models.SessionResponse{
		ID:        found.ID.String(),
		Input:     state.Input,
		Result:    state.Result,
		Accepted:  accepted,
		CreatedAt: found.CreatedAt,
	}
}

// writeErrorResponse writes an error response using Gin context
func (handlers *Handlers) writeErrorResponse(context *gin.Context, statusCode int, errorMessage, errorDetails string) {
	errorResponse := models.ErrorResponse{
		Error:   errorMessage,
		Message: errorDetails,
		Code:    statusCode,
	}

	context.JSON(statusCode, errorResponse)
}
