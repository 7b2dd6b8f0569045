package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/domain/repository"
	"github.com/bellringer/quiz-api/internal/handler/dto"
)

// AttemptHandler обрабатывает запросы, связанные с попытками прохождения
type AttemptHandler struct {
	attemptService AttemptService
	logger         *zap.Logger
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(attemptService AttemptService, logger *zap.Logger) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService, logger: orNop(logger).Named("attempt_handler")}
}

// StartAttempt открывает новую попытку по викторине
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	attempt, err := h.attemptService.StartAttempt(c.Request.Context(), userID, quizID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewAttemptResponse(attempt))
}

// ListAttempts возвращает попытки по викторине
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID := c.MustGet("quizID").(uint)

	attempts, err := h.attemptService.ListAttempts(c.Request.Context(), userID, quizID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListAttemptResponse(attempts))
}

// GetAttempt возвращает попытку с ответами
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	attemptID := c.MustGet("attemptID").(uint)

	attempt, err := h.attemptService.GetAttempt(c.Request.Context(), userID, attemptID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt))
}

// SubmitChoicesRequest — выбранные варианты по вопросу
type SubmitChoicesRequest struct {
	ChoiceIDs []uint `json:"choice_ids" binding:"required,min=1"`
}

// SubmitChoices сохраняет выбор по вопросу, заменяя предыдущий
func (h *AttemptHandler) SubmitChoices(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	attemptID := c.MustGet("attemptID").(uint)
	questionID := c.MustGet("questionID").(uint)

	var req SubmitChoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.attemptService.SubmitChoices(c.Request.Context(), userID, attemptID, questionID, req.ChoiceIDs); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SubmitTextRequest — свободный ответ на вопрос
type SubmitTextRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// SubmitText сохраняет свободный ответ. Оценку позже выставляет проверяющий через GradeTextAnswer.
func (h *AttemptHandler) SubmitText(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	attemptID := c.MustGet("attemptID").(uint)
	questionID := c.MustGet("questionID").(uint)

	var req SubmitTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.attemptService.SubmitText(c.Request.Context(), userID, attemptID, questionID, req.Answer); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CompleteAttempt завершает попытку и вместе с ней викторину
func (h *AttemptHandler) CompleteAttempt(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	attemptID := c.MustGet("attemptID").(uint)

	if err := h.attemptService.CompleteAttempt(c.Request.Context(), userID, attemptID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GradeTextAnswerRequest — оценка свободного ответа от сервиса проверки
type GradeTextAnswerRequest struct {
	Score     *float64 `json:"score"`
	IsCorrect *bool    `json:"is_correct"`
	Feedback  string   `json:"feedback"`
}

// GradeTextAnswer выставляет оценку свободному ответу (только для администратора)
func (h *AttemptHandler) GradeTextAnswer(c *gin.Context) {
	attemptID := c.MustGet("attemptID").(uint)
	questionID := c.MustGet("questionID").(uint)

	var req GradeTextAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	answer, err := h.attemptService.GradeTextAnswer(c.Request.Context(), attemptID, questionID, repository.TextAnswerGrade{
		Score:     req.Score,
		IsCorrect: req.IsCorrect,
		Feedback:  req.Feedback,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewTextAnswerResponse(answer))
}

// ListUngradedTextAnswers возвращает ответы, ожидающие проверки (?attempt_id=&limit=)
func (h *AttemptHandler) ListUngradedTextAnswers(c *gin.Context) {
	var attemptID *uint
	if raw := c.Query("attempt_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attempt_id", "error_type": "validation"})
			return
		}
		v := uint(id)
		attemptID = &v
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit", "error_type": "validation"})
		return
	}

	answers, err := h.attemptService.ListUngradedTextAnswers(c.Request.Context(), attemptID, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.JSON(http.StatusOK, dto.NewListTextAnswerResponse(answers))
}
