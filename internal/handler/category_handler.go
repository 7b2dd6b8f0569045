package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/handler/dto"
)

// CategoryHandler обрабатывает запросы к дереву категорий
type CategoryHandler struct {
	categoryService CategoryService
	logger          *zap.Logger
}

// NewCategoryHandler создает новый обработчик категорий
func NewCategoryHandler(categoryService CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, logger: orNop(logger).Named("category_handler")}
}

// CreateCategoryRequest — запрос на создание категории
type CreateCategoryRequest struct {
	Area     string `json:"area" binding:"omitempty,max=100"`
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// CreateCategory создает категорию (корневую или дочернюю)
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), req.Area, req.Name, req.ParentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewCategoryResponse(category))
}

// GetCategory возвращает категорию по ID
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	category, err := h.categoryService.GetCategory(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCategoryResponse(category))
}

// ListRoots возвращает корневые категории
func (h *CategoryHandler) ListRoots(c *gin.Context) {
	categories, err := h.categoryService.ListRoots(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListCategoryResponse(categories))
}

// ListChildren возвращает прямых потомков категории
func (h *CategoryHandler) ListChildren(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	categories, err := h.categoryService.ListChildren(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListCategoryResponse(categories))
}
