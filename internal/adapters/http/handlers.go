package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/investdesk/core/internal/application/services"
	"github.com/investdesk/core/internal/domain/entities"
	"github.com/investdesk/core/internal/infrastructure/logger"
	"github.com/investdesk/core/internal/infrastructure/storage"
	"github.com/investdesk/core/internal/ports"
)

// MessageResponse is a generic message payload
type MessageResponse struct {
	Message string `json:"message"`
}

// mapDomainError translates expected domain failures into HTTP errors.
// Anything unrecognized is a 500 with a generic message; details stay in
// the logs.
func mapDomainError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, entities.ErrInvestmentNotFound),
		errors.Is(err, entities.ErrUserNotFound),
		errors.Is(err, entities.ErrLeadNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, entities.ErrEmailTaken),
		errors.Is(err, entities.ErrDuplicateID):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, entities.ErrInvalidStatus),
		errors.Is(err, entities.ErrInvalidRisk),
		errors.Is(err, entities.ErrInvalidLeadStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrStoreUnavailable),
		errors.Is(err, storage.ErrLockTimeout):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Data store unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Operation failed")
	}
}

// getUserEmailFromContext returns the authenticated caller's email, set by
// the auth middleware.
func getUserEmailFromContext(c echo.Context) string {
	email, _ := c.Get("user_email").(string)
	return email
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Login failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return c.JSON(http.StatusOK, response)
}

// UserHandler handles user-related requests
type UserHandler struct {
	userService *services.UserService
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// CreateUser handles user creation
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req ports.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.CreateUser(c.Request().Context(), req)
	if err != nil {
		h.logger.Errorw("Create user failed", "error", err)
		return mapDomainError(err)
	}

	return c.JSON(http.StatusCreated, user)
}

// ListUsers handles listing all users
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List users failed", "error", err)
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser handles getting user by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.userService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.logger.Warnw("Get user failed", "error", err, "user_id", c.Param("id"))
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser handles partial user updates
func (h *UserHandler) UpdateUser(c echo.Context) error {
	var req ports.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		h.logger.Errorw("Update user failed", "error", err, "user_id", c.Param("id"))
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles user deletion
func (h *UserHandler) DeleteUser(c echo.Context) error {
	if err := h.userService.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		h.logger.Errorw("Delete user failed", "error", err, "user_id", c.Param("id"))
		return mapDomainError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "User deleted"})
}
