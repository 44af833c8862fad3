package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"bitslow-market/internal/domain/dto"
	"bitslow-market/internal/middlewares"
	"bitslow-market/internal/repository"
	"bitslow-market/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (dto.ClientData, string, string, error)
	Login(ctx context.Context, email, password string) (dto.ClientData, string, string, error)
	Refresh(refreshToken string) (string, error)
	Profile(ctx context.Context, email string) (dto.ClientData, error)
}

type AuthHandler struct {
	log         *slog.Logger
	authService AuthService
}

func NewAuthHandler(log *slog.Logger, authService AuthService) *AuthHandler {
	return &AuthHandler{
		log:         log,
		authService: authService,
	}
}

// Signup
// @Summary Register a new client
// @Description Creates the client and returns an access token in the Authentificate header.
// @Tags auth
// @Accept json
// @Produce json
// @Param signup body dto.SignupRequest true "Registration data"
// @Success 201 {object} map[string]interface{} "Client created"
// @Failure 400 {object} map[string]string "Validation failure"
// @Failure 404 {object} map[string]string "Email already registered"
// @Router /api/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var input dto.SignupRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, accessToken, refreshToken, err := h.authService.Signup(c.Request.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			c.JSON(http.StatusNotFound, gin.H{"error": "Email already exists in db"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrFailedToGenerateTokens) || errors.Is(err, services.ErrFailedToStoreRefreshToken):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown error"})
		}
		return
	}

	c.Header(middlewares.TokenHeader, accessToken)
	c.JSON(http.StatusCreated, gin.H{
		"message":      "registerSuccess",
		"name":         client.Name,
		"email":        client.Email,
		"phone":        client.Phone,
		"address":      client.Address,
		"refreshToken": refreshToken,
	})
}

// Login
// @Summary Authenticate an existing client
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{} "Authenticated"
// @Failure 401 {object} map[string]string "Wrong password"
// @Failure 404 {object} map[string]string "Unknown email"
// @Router /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, accessToken, refreshToken, err := h.authService.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrClientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		}
		return
	}

	c.Header(middlewares.TokenHeader, accessToken)
	c.JSON(http.StatusOK, gin.H{
		"message":      "loginSuccess",
		"id":           client.ID,
		"name":         client.Name,
		"email":        client.Email,
		"refreshToken": refreshToken,
		"time":         time.Now().Format(time.RFC3339),
	})
}

// Protected returns the authenticated client's profile.
func (h *AuthHandler) Protected(c *gin.Context) {
	emailVal, exists := c.Get(middlewares.CtxEmail)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	client, err := h.authService.Profile(c.Request.Context(), emailVal.(string))
	if err != nil {
		if errors.Is(err, repository.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the protected route!",
		"user":    client,
	})
}

// Refresh exchanges the refresh token carried in the Authentificate
// header for a new access token. At most one exchange per failed
// request happens on the caller side; the endpoint itself is stateless.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken := c.GetHeader(middlewares.TokenHeader)
	if refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token missing"})
		return
	}

	accessToken, err := h.authService.Refresh(refreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	c.Header(middlewares.TokenHeader, accessToken)
	c.JSON(http.StatusOK, gin.H{"accessToken": accessToken})
}

// Logout is stateless: tokens cannot be revoked server-side, the client
// simply drops them.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func isValidationError(err error) bool {
	return errors.Is(err, middlewares.ErrEmptyField) ||
		errors.Is(err, middlewares.ErrInvalidEmail) ||
		errors.Is(err, middlewares.ErrNameNotCapitalized) ||
		errors.Is(err, middlewares.ErrPhoneTooShort) ||
		errors.Is(err, middlewares.ErrPasswordTooShort)
}
