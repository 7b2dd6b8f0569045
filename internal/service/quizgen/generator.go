package quizgen

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

// Generator собирает викторину: режим → квота → категории → выборка → викторина и попытка
type Generator struct {
	cfg      Config
	deps     Dependencies
	resolver *Resolver
	sampler  *Sampler
	rnd      Rand
	logger   *zap.Logger
}

// NewGenerator создаёт генератор. При rnd == nil используется глобальный источник случайности.
func NewGenerator(cfg Config, deps Dependencies, rnd Rand, logger *zap.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation config: %w", err)
	}
	if deps.History == nil || deps.Categories == nil || deps.Questions == nil ||
		deps.Quizzes == nil || deps.Attempts == nil {
		return nil, fmt.Errorf("quizgen: all stores except Tx are required")
	}
	if rnd == nil {
		rnd = globalRand{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		cfg:      cfg,
		deps:     deps,
		resolver: NewResolver(deps.Categories),
		sampler:  NewSampler(deps.Questions, rnd, cfg.OverdrawFactor, logger),
		rnd:      rnd,
		logger:   logger,
	}, nil
}

// Config возвращает действующие настройки
func (g *Generator) Config() Config {
	return g.cfg
}

// DecideMode возвращает ModeOverride, если он задан, иначе ADAPTIVE при
// достаточном количестве завершённых викторин в категории.
func (g *Generator) DecideMode(ctx context.Context, req Request) (Mode, error) {
	if req.ModeOverride != nil {
		return *req.ModeOverride, nil
	}
	completed, err := g.deps.History.CountCompleted(ctx, req.UserID, req.CategoryID)
	if err != nil {
		return "", fmt.Errorf("count completed quizzes: %w", err)
	}
	if completed >= int64(g.cfg.MinQuizzesForAdaptive) {
		return ModeAdaptive, nil
	}
	return ModeRandom, nil
}

// ComputeQuota проверяет запрос, выбирает режим и рассчитывает квоту
func (g *Generator) ComputeQuota(ctx context.Context, req Request) (Mode, Quota, error) {
	if err := g.validate(req); err != nil {
		return "", Quota{}, err
	}
	return g.computeQuota(ctx, req)
}

func (g *Generator) computeQuota(ctx context.Context, req Request) (Mode, Quota, error) {
	mode, err := g.DecideMode(ctx, req)
	if err != nil {
		return "", Quota{}, err
	}

	var weights Weights
	switch mode {
	case ModeAdaptive:
		acc, err := g.deps.History.LoadAccuracy(ctx, req.UserID, req.CategoryID)
		if err != nil {
			return "", Quota{}, fmt.Errorf("load accuracy: %w", err)
		}
		weights = AdaptiveWeights(g.cfg.Base, acc, g.cfg.AdaptiveAlpha)
		g.logger.Debug("adaptive weights",
			zap.Float64("acc_easy", acc.Easy),
			zap.Float64("acc_medium", acc.Medium),
			zap.Float64("acc_hard", acc.Hard),
		)
	default:
		weights = RandomWeights(g.cfg.Base, g.cfg.Noise, g.rnd)
	}

	return mode, Apportion(weights, req.Total), nil
}

// Generate создаёт (или дополняет) викторину, привязывает выбранные вопросы и
// открывает попытку. Вопросы возвращаются без вариантов ответа.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := g.validate(req); err != nil {
		return nil, err
	}

	mode, quota, err := g.computeQuota(ctx, req)
	if err != nil {
		return nil, err
	}

	categoryIDs, err := g.resolver.ResolveSelectionIDs(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	selected, err := g.sampler.DrawWithQuota(ctx, categoryIDs, quota, req.Total)
	if err != nil {
		return nil, err
	}

	if len(selected) < req.Total {
		g.logger.Warn("sampled fewer questions than requested",
			zap.String("user_id", req.UserID.String()),
			zap.Uint("category_id", req.CategoryID),
			zap.Int("requested", req.Total),
			zap.Int("sampled", len(selected)),
			zap.String("policy", string(g.cfg.ShortfallPolicy)),
		)
		if g.cfg.ShortfallPolicy == ShortfallStrict {
			return nil, fmt.Errorf("%w (got %d, need %d)", apperrors.ErrShortSample, len(selected), req.Total)
		}
	}

	questionIDs := make([]uint, len(selected))
	for i := range selected {
		questionIDs[i] = selected[i].ID
		selected[i].Choices = nil
	}

	var quizID, attemptID uint
	err = g.withinTx(ctx, func(ctx context.Context) error {
		var err error
		quizID, err = g.ensureQuiz(ctx, req)
		if err != nil {
			return err
		}
		if err := g.deps.Quizzes.AttachQuestions(ctx, quizID, questionIDs); err != nil {
			return fmt.Errorf("attach questions to quiz #%d: %w", quizID, err)
		}
		attempt := &entity.Attempt{QuizID: quizID}
		if err := g.deps.Attempts.Create(ctx, attempt); err != nil {
			return fmt.Errorf("start attempt for quiz #%d: %w", quizID, err)
		}
		attemptID = attempt.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.logger.Info("quiz generated",
		zap.Uint("quiz_id", quizID),
		zap.Uint("attempt_id", attemptID),
		zap.String("mode", string(mode)),
		zap.Int("easy", quota.Easy),
		zap.Int("medium", quota.Medium),
		zap.Int("hard", quota.Hard),
		zap.Int("questions", len(selected)),
		zap.Uints("category_ids", categoryIDs),
	)

	return &Result{
		QuizID:    quizID,
		AttemptID: attemptID,
		Mode:      mode,
		Quota:     quota,
		Questions: selected,
	}, nil
}

// ensureQuiz возвращает ID переданной викторины или создаёт новую
func (g *Generator) ensureQuiz(ctx context.Context, req Request) (uint, error) {
	if req.QuizID == nil {
		quiz := &entity.Quiz{UserID: req.UserID, CategoryID: req.CategoryID}
		if err := g.deps.Quizzes.Create(ctx, quiz); err != nil {
			return 0, fmt.Errorf("create quiz: %w", err)
		}
		return quiz.ID, nil
	}

	quiz, err := g.deps.Quizzes.GetByID(ctx, *req.QuizID)
	if err != nil {
		return 0, fmt.Errorf("quiz #%d: %w", *req.QuizID, err)
	}
	if quiz.UserID != req.UserID {
		return 0, fmt.Errorf("quiz #%d belongs to another user: %w", quiz.ID, apperrors.ErrForbidden)
	}
	return quiz.ID, nil
}

func (g *Generator) withinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if g.deps.Tx == nil {
		return fn(ctx)
	}
	return g.deps.Tx.WithinTx(ctx, fn)
}

// validate отклоняет запрос до обращения к хранилищам
func (g *Generator) validate(req Request) error {
	if req.UserID == uuid.Nil {
		return fmt.Errorf("%w: userId required", apperrors.ErrValidation)
	}
	if req.CategoryID == 0 {
		return fmt.Errorf("%w: categoryId required", apperrors.ErrValidation)
	}
	if req.Total <= 0 {
		return fmt.Errorf("%w: total must be > 0", apperrors.ErrValidation)
	}
	if !g.cfg.IsAllowedTotal(req.Total) {
		return fmt.Errorf("%w: total must be one of %v", apperrors.ErrValidation, g.cfg.AllowedTotals)
	}
	if req.ModeOverride != nil {
		if _, err := ParseMode(string(*req.ModeOverride)); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
	}
	if req.DifficultyFilter != nil && !req.DifficultyFilter.IsValid() {
		return fmt.Errorf("%w: unknown difficulty %q", apperrors.ErrValidation, *req.DifficultyFilter)
	}
	if req.QuizID != nil && *req.QuizID == 0 {
		return fmt.Errorf("%w: quizId must be positive", apperrors.ErrValidation)
	}
	return nil
}
