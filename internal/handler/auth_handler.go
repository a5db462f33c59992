package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"eventsapi/internal/auth"
	apperrors "eventsapi/internal/errors"
	"eventsapi/internal/model"
	"eventsapi/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService   service.AuthService
	uploadService service.UploadService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, uploadService service.UploadService) *AuthHandler {
	return &AuthHandler{authService: authService, uploadService: uploadService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *RegisterRequest) normalize() {
	trim(&r.Name, &r.Email)
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) normalize() {
	trim(&r.Email)
}

// AuthResponse carries a bearer token and the authenticated user.
type AuthResponse struct {
	Token string            `json:"token"`
	User  *model.PublicUser `json:"user"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	User *model.PublicUser `json:"user"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} Response{data=AuthResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "user registered successfully", AuthResponse{
		Token: result.Token,
		User:  result.User.Public(),
	})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} Response{data=AuthResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "login successful", AuthResponse{
		Token: result.Token,
		User:  result.User.Public(),
	})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=UserResponse}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return apperrors.ErrUserNotFound
	}
	return respond(c, http.StatusOK, "", UserResponse{User: user.Public()})
}

// Logout godoc
// @Summary Logout user
// @Description Stateless unless token revocation is enabled, in which case the presented token stops working.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), auth.CurrentClaims(c)); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "logout successful", nil)
}

// UpdateAvatar godoc
// @Summary Replace the current user's avatar
// @Tags auth
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image (jpeg, png, gif, webp)"
// @Success 200 {object} Response{data=UserResponse}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /auth/avatar [put]
func (h *AuthHandler) UpdateAvatar(c echo.Context) error {
	user := auth.CurrentUser(c)
	if user == nil {
		return apperrors.ErrUserNotFound
	}

	fh, err := formFile(c, "avatar")
	if err != nil {
		return err
	}
	img, err := h.uploadService.ReadImage(fh)
	if err != nil {
		return err
	}

	updated, err := h.authService.UpdateAvatar(c.Request().Context(), user, img)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "avatar updated successfully", UserResponse{User: updated.Public()})
}
