package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CharlesTPAquino/RegistroMM/internal/core/domain"
	"github.com/CharlesTPAquino/RegistroMM/internal/transport/http/middleware"
	"github.com/CharlesTPAquino/RegistroMM/internal/usecase"
)

// Registrar runs the registration workflow.
type Registrar interface {
	Register(ctx context.Context, input usecase.RegistrationInput) (*domain.Account, error)
}

// Authenticator runs the login workflow and issues session tokens.
type Authenticator interface {
	Login(ctx context.Context, input usecase.LoginInput) (*usecase.LoginResult, error)
	TokenLifetime() time.Duration
}

// AuthHandler exposes registration and authentication endpoints.
type AuthHandler struct {
	registration Registrar
	auth         Authenticator
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(registration Registrar, auth Authenticator) *AuthHandler {
	return &AuthHandler{registration: registration, auth: auth}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of handlers.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, authMiddleware gin.HandlerFunc, registerMiddlewares, loginMiddlewares []gin.HandlerFunc) {
	registerChain := append([]gin.HandlerFunc{}, registerMiddlewares...)
	registerChain = append(registerChain, h.register)
	r.POST("/register", registerChain...)

	loginChain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	loginChain = append(loginChain, h.login)
	r.POST("/login", loginChain...)

	if authMiddleware != nil {
		r.GET("/me", authMiddleware, h.me)
	}
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	input := usecase.RegistrationInput{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	}

	account, err := h.registration.Register(c.Request.Context(), input)
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to register account")
		return
	}

	c.JSON(http.StatusCreated, RegisterResponse{Account: newAccountSummary(account)})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		cases := []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
		}
		RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "failed to log in")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		TokenType: "Bearer",
		ExpiresIn: int(h.auth.TokenLifetime().Seconds()),
		Account:   newAccountSummary(result.Account),
	})
}

func (h *AuthHandler) me(c *gin.Context) {
	accountID, exists := c.Get(middleware.AccountIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "not authenticated"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"account_id": accountID})
}
