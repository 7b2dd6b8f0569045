package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	"github.com/bellringer/quiz-api/internal/handler/dto"
	"github.com/bellringer/quiz-api/internal/middleware"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
	"github.com/bellringer/quiz-api/internal/service"
	"github.com/bellringer/quiz-api/internal/service/quizgen"
)

const (
	maxImportFileSize = 10 << 20 // 10 MB
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// QuestionHandler обрабатывает запросы к банку вопросов и генерации викторин
type QuestionHandler struct {
	questionService QuestionService
	logger          *zap.Logger
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(questionService QuestionService, logger *zap.Logger) *QuestionHandler {
	return &QuestionHandler{questionService: questionService, logger: orNop(logger).Named("question_handler")}
}

// GenerateQuizRequest — запрос на генерацию викторины
type GenerateQuizRequest struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Total      int    `json:"total" binding:"required,min=1"`
	QuizID     *uint  `json:"quiz_id"`
	Mode       string `json:"mode"`       // RANDOM | ADAPTIVE, если пусто, выбирается автоматически
	Difficulty string `json:"difficulty"` // принимается, на выборку не влияет
}

// toRequest переводит DTO в запрос генератора
func (r GenerateQuizRequest) toRequest(userID uuid.UUID) (quizgen.Request, error) {
	req := quizgen.Request{
		UserID:     userID,
		QuizID:     r.QuizID,
		CategoryID: r.CategoryID,
		Total:      r.Total,
	}
	if strings.TrimSpace(r.Mode) != "" {
		mode, err := quizgen.ParseMode(r.Mode)
		if err != nil {
			return req, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		req.ModeOverride = &mode
	}
	if strings.TrimSpace(r.Difficulty) != "" {
		d, err := entity.ParseDifficulty(r.Difficulty)
		if err != nil {
			return req, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		req.DifficultyFilter = &d
	}
	return req, nil
}

// GenerateQuiz собирает викторину из банка вопросов и открывает попытку
func (h *QuestionHandler) GenerateQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body GenerateQuizRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	req, err := body.toRequest(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.questionService.GenerateQuiz(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewGenerateQuizResponse(result, req.Total))
}

// PreviewQuota возвращает режим и квоту, которые получил бы запрос на генерацию
func (h *QuestionHandler) PreviewQuota(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body GenerateQuizRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	req, err := body.toRequest(userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	mode, quota, err := h.questionService.PreviewQuota(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuotaPreviewResponse{Mode: string(mode), Quota: dto.NewQuotaResponse(quota)})
}

// CreateQuestionRequest — запрос на создание вопроса
type CreateQuestionRequest struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Type       string `json:"type" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required"`
	Text       string `json:"question" binding:"required"`
	Choices    []struct {
		Text      string `json:"text" binding:"required"`
		IsCorrect bool   `json:"is_correct"`
	} `json:"choices" binding:"omitempty,dive"`
}

// CreateQuestion добавляет вопрос в банк
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	in := service.QuestionInput{
		CategoryID: req.CategoryID,
		Type:       req.Type,
		Difficulty: req.Difficulty,
		Text:       req.Text,
		Choices:    make([]service.ChoiceInput, len(req.Choices)),
	}
	for i, ch := range req.Choices {
		in.Choices[i] = service.ChoiceInput{Text: ch.Text, IsCorrect: ch.IsCorrect}
	}

	question, err := h.questionService.CreateQuestion(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question, true, true))
}

// GetQuestion возвращает вопрос с вариантами. Правильные ответы видны только администраторам.
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	question, err := h.questionService.GetQuestion(c.Request.Context(), questionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question, true, c.GetBool(middleware.ContextIsAdmin)))
}

// ImportQuestions загружает вопросы из .xlsx файла (поле формы "file")
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required", "error_type": "validation"})
		return
	}
	if fileHeader.Size > maxImportFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is too large", "error_type": "validation"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("failed to open uploaded file: %w", err))
		return
	}
	defer file.Close()

	report, err := h.questionService.ImportXLSX(c.Request.Context(), file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.Info("Questions imported",
		zap.String("file", fileHeader.Filename),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped))
	c.JSON(http.StatusOK, report)
}

// ExportQuestions выгружает вопросы категории и её потомков в .xlsx
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	// Пишем в буфер, чтобы ошибка не оборвала уже начатый ответ
	var buf bytes.Buffer
	if err := h.questionService.ExportXLSX(c.Request.Context(), categoryID, &buf); err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("questions_category_%d.xlsx", categoryID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GetStock возвращает запас вопросов по сложностям для категории вместе с потомками
func (h *QuestionHandler) GetStock(c *gin.Context) {
	categoryID := c.MustGet("categoryID").(uint)

	counts, err := h.questionService.Stock(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewStockResponse(categoryID, counts))
}
