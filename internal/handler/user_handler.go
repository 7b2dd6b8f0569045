package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/handler/dto"
	"github.com/bellringer/quiz-api/internal/middleware"
	"github.com/bellringer/quiz-api/internal/service"
)

// UserHandler обрабатывает запросы, связанные с пользователями
type UserHandler struct {
	userService UserService
	logger      *zap.Logger
}

// NewUserHandler создает новый UserHandler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: orNop(logger).Named("user_handler")}
}

// GetMe возвращает профиль текущего пользователя, создавая его при первом обращении
func (h *UserHandler) GetMe(c *gin.Context) {
	identity, ok := middleware.Identity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "error_type": "token_missing"})
		return
	}

	user, err := h.userService.Me(c.Request.Context(), service.UserProfile{
		ID:    identity.UserID,
		Email: identity.Email,
		Name:  identity.Name,
		Role:  identity.Role,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateMeRequest — изменение профиля
type UpdateMeRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// UpdateMe меняет отображаемое имя
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.UpdateDisplayName(c.Request.Context(), userID, req.DisplayName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
