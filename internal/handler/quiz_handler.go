package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/handler/dto"
)

// QuizHandler обрабатывает запросы, связанные с викторинами пользователя
type QuizHandler struct {
	quizService QuizService
	logger      *zap.Logger
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(quizService QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{quizService: quizService, logger: orNop(logger).Named("quiz_handler")}
}

// CreateQuizRequest представляет запрос на создание пустой викторины
type CreateQuizRequest struct {
	CategoryID uint `json:"category_id" binding:"required"`
}

// CreateQuiz создает пустую викторину в категории
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), userID, req.CategoryID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz, false))
}

// GetQuiz возвращает викторину с вопросами и вариантами ответа
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), userID, quizID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, true))
}

// ListQuizzes возвращает викторины пользователя (?limit=&offset=)
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit", "error_type": "validation"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset", "error_type": "validation"})
		return
	}

	quizzes, err := h.quizService.ListUserQuizzes(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListQuizResponse(quizzes))
}

// AttachQuestionsRequest — список вопросов для привязки
type AttachQuestionsRequest struct {
	QuestionIDs []uint `json:"question_ids" binding:"required,min=1,max=100"`
}

// AttachQuestions привязывает вопросы к викторине. Повторная привязка не создаёт дублей.
func (h *QuizHandler) AttachQuestions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	var req AttachQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.quizService.AttachQuestions(c.Request.Context(), userID, quizID, req.QuestionIDs); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CompleteQuiz отмечает викторину завершённой
func (h *QuizHandler) CompleteQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	if err := h.quizService.CompleteQuiz(c.Request.Context(), userID, quizID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReopenQuiz снимает отметку о завершении
func (h *QuizHandler) ReopenQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	if err := h.quizService.ReopenQuiz(c.Request.Context(), userID, quizID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetHistory возвращает число завершённых викторин и точность по сложностям в категории
func (h *QuizHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	categoryID := c.MustGet("categoryID").(uint)

	history, err := h.quizService.History(c.Request.Context(), userID, categoryID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, history)
}
