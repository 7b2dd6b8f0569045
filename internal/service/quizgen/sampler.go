package quizgen

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/bellringer/quiz-api/internal/domain/entity"
	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

// Sampler выбирает вопросы по квоте без повторов
type Sampler struct {
	store    QuestionStore
	rnd      Rand
	overdraw int
	logger   *zap.Logger
}

// NewSampler создаёт Sampler. При rnd == nil используется глобальный источник, overdraw < 1 заменяется на 1.
func NewSampler(store QuestionStore, rnd Rand, overdraw int, logger *zap.Logger) *Sampler {
	if rnd == nil {
		rnd = globalRand{}
	}
	if overdraw < 1 {
		overdraw = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{store: store, rnd: rnd, overdraw: overdraw, logger: logger}
}

// DrawWithQuota возвращает до total вопросов с уникальными ID.
//
// Перед любой случайной выборкой проверяется общий запас в категориях:
// stock < total → ErrInsufficientStock. Затем по уровням easy → medium → hard
// запрашивается quota*overdraw вопросов, из которых в порядке выдачи берутся
// первые quota ещё не встречавшихся. Недобор уровня покрывается одной
// выборкой без фильтра по сложности, исключающей уже выбранные ID.
// Итог перемешивается.
//
// Результат короче total не считается ошибкой: запас проверен заранее,
// и недобор означает конкурентное изменение банка вопросов.
func (s *Sampler) DrawWithQuota(ctx context.Context, categoryIDs []uint, quota Quota, total int) ([]entity.Question, error) {
	if len(categoryIDs) == 0 {
		return nil, fmt.Errorf("%w: categoryIds must not be empty", apperrors.ErrValidation)
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: total must be > 0", apperrors.ErrValidation)
	}

	stock, err := s.store.CountInCategories(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("count questions in categories %v: %w", categoryIDs, err)
	}
	if stock < int64(total) {
		return nil, fmt.Errorf("%w (have %d, need %d)", apperrors.ErrInsufficientStock, stock, total)
	}

	out := make([]entity.Question, 0, total)
	seen := make(map[uint]struct{}, total*s.overdraw)

	for _, d := range entity.Difficulties {
		need := quota.For(d)
		if need <= 0 {
			continue
		}
		difficulty := d
		batch, err := s.store.DrawRandom(ctx, categoryIDs, &difficulty, nil, need*s.overdraw)
		if err != nil {
			return nil, fmt.Errorf("draw %s questions: %w", d, err)
		}
		var added int
		out, added = addUnique(out, batch, need, seen)
		s.logger.Debug("bucket drawn",
			zap.String("difficulty", string(d)),
			zap.Int("requested", need),
			zap.Int("fetched", len(batch)),
			zap.Int("added", added),
			zap.Int("seen", len(seen)),
		)
	}

	if missing := total - len(out); missing > 0 {
		batch, err := s.store.DrawRandom(ctx, categoryIDs, nil, seenIDs(seen), missing*s.overdraw)
		if err != nil {
			return nil, fmt.Errorf("draw top-up questions: %w", err)
		}
		var added int
		out, added = addUnique(out, batch, missing, seen)
		s.logger.Debug("top-up drawn",
			zap.Int("missing", missing),
			zap.Int("fetched", len(batch)),
			zap.Int("added", added),
			zap.Int("seen", len(seen)),
		)
	}

	s.rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })

	if len(out) > total {
		out = out[:total]
	}
	return out, nil
}

// addUnique добавляет в out до need вопросов из batch, которых ещё нет в seen.
// Порядок batch сохраняется.
func addUnique(out, batch []entity.Question, need int, seen map[uint]struct{}) ([]entity.Question, int) {
	added := 0
	for _, q := range batch {
		if added >= need {
			break
		}
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		out = append(out, q)
		added++
	}
	return out, added
}

func seenIDs(seen map[uint]struct{}) []uint {
	ids := make([]uint, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
