package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bellringer/quiz-api/internal/middleware"
)

// Handlers собирает обработчики для регистрации маршрутов
type Handlers struct {
	Question *QuestionHandler
	Category *CategoryHandler
	Quiz     *QuizHandler
	Attempt  *AttemptHandler
	User     *UserHandler
	Health   *HealthHandler
}

// RouteOptions — middleware, которые зависят от окружения
type RouteOptions struct {
	Auth *middleware.AuthMiddleware
	// GenerateLimit ограничивает частоту генерации, при nil без ограничения
	GenerateLimit gin.HandlerFunc
	// Metrics отдаёт /metrics, при nil маршрут не регистрируется
	Metrics gin.HandlerFunc
}

// RegisterRoutes настраивает маршруты API
func RegisterRoutes(router *gin.Engine, h Handlers, opts RouteOptions) {
	router.GET("/health", h.Health.Health)
	if opts.Metrics != nil {
		router.GET("/metrics", opts.Metrics)
	}

	generateLimit := opts.GenerateLimit
	if generateLimit == nil {
		generateLimit = func(c *gin.Context) { c.Next() }
	}

	api := router.Group("/api/v1")
	api.Use(opts.Auth.RequireAuth())
	{
		me := api.Group("/me")
		{
			me.GET("", h.User.GetMe)
			me.PATCH("", h.User.UpdateMe)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", h.Category.ListRoots)
			categories.POST("", opts.Auth.AdminOnly(), h.Category.CreateCategory)

			categoryWithID := categories.Group("/:id")
			categoryWithID.Use(middleware.ExtractUintParam("id", "categoryID"))
			{
				categoryWithID.GET("", h.Category.GetCategory)
				categoryWithID.GET("/children", h.Category.ListChildren)
				categoryWithID.GET("/stock", h.Question.GetStock)
				categoryWithID.GET("/history", h.Quiz.GetHistory)
				categoryWithID.GET("/questions/export", opts.Auth.AdminOnly(), h.Question.ExportQuestions)
			}
		}

		questions := api.Group("/questions")
		{
			questions.POST("/generate", generateLimit, h.Question.GenerateQuiz)
			questions.POST("/quota", h.Question.PreviewQuota)
			questions.GET("/:id", middleware.ExtractUintParam("id", "questionID"), h.Question.GetQuestion)

			adminQuestions := questions.Group("")
			adminQuestions.Use(opts.Auth.AdminOnly())
			{
				adminQuestions.POST("", h.Question.CreateQuestion)
				adminQuestions.POST("/import", h.Question.ImportQuestions)
			}
		}

		quizzes := api.Group("/quizzes")
		{
			quizzes.GET("", h.Quiz.ListQuizzes)
			quizzes.POST("", h.Quiz.CreateQuiz)

			quizWithID := quizzes.Group("/:id")
			quizWithID.Use(middleware.ExtractUintParam("id", "quizID"))
			{
				quizWithID.GET("", h.Quiz.GetQuiz)
				quizWithID.POST("/questions", h.Quiz.AttachQuestions)
				quizWithID.POST("/complete", h.Quiz.CompleteQuiz)
				quizWithID.DELETE("/complete", h.Quiz.ReopenQuiz)
				quizWithID.GET("/attempts", h.Attempt.ListAttempts)
				quizWithID.POST("/attempts", h.Attempt.StartAttempt)
			}
		}

		attemptWithID := api.Group("/attempts/:id")
		attemptWithID.Use(middleware.ExtractUintParam("id", "attemptID"))
		{
			attemptWithID.GET("", h.Attempt.GetAttempt)
			attemptWithID.POST("/complete", h.Attempt.CompleteAttempt)

			answers := attemptWithID.Group("/questions/:questionId")
			answers.Use(middleware.ExtractUintParam("questionId", "questionID"))
			{
				answers.PUT("/choices", h.Attempt.SubmitChoices)
				answers.PUT("/text", h.Attempt.SubmitText)
				answers.PUT("/grade", opts.Auth.AdminOnly(), h.Attempt.GradeTextAnswer)
			}
		}

		api.GET("/text-answers/ungraded", opts.Auth.AdminOnly(), h.Attempt.ListUngradedTextAnswers)
	}
}
