package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/monkesto/tally/internal/core/domain"
	portssvc "github.com/monkesto/tally/internal/core/ports/services"
	"github.com/monkesto/tally/internal/dto"
	"github.com/monkesto/tally/internal/middleware"
)

// authHandler handles registration, login and token refresh.
type authHandler struct {
	userService  portssvc.UserSvcFacade
	tokenService portssvc.TokenSvcFacade
}

func newAuthHandler(userService portssvc.UserSvcFacade, tokenService portssvc.TokenSvcFacade) *authHandler {
	return &authHandler{
		userService:  userService,
		tokenService: tokenService,
	}
}

// registerAuthRoutes mounts the public authentication endpoints.
func registerAuthRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	h := newAuthHandler(services.User, services.Token)

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/refresh", h.refresh)
	}
}

func (h *authHandler) register(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.RegisterUser(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userService.AuthenticateUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	pair, err := h.tokenPair(c, user)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("User logged in", slog.String("user_id", user.UserID))
	c.JSON(http.StatusOK, pair)
}

func (h *authHandler) refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.tokenService.ValidateRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	pair, err := h.tokenPair(c, user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

func (h *authHandler) tokenPair(c *gin.Context, user *domain.User) (dto.TokenPairResponse, error) {
	access, accessExp, err := h.tokenService.GenerateAccessToken(c.Request.Context(), user)
	if err != nil {
		return dto.TokenPairResponse{}, err
	}
	refresh, refreshExp, err := h.tokenService.GenerateRefreshToken(c.Request.Context(), user)
	if err != nil {
		return dto.TokenPairResponse{}, err
	}
	return dto.TokenPairResponse{
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExp,
		RefreshToken:          refresh,
		RefreshTokenExpiresAt: refreshExp,
		User:                  dto.ToUserResponse(user),
	}, nil
}
