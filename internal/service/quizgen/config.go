package quizgen

import (
	"fmt"
	"slices"
)

// ShortfallPolicy определяет реакцию на выборку короче запрошенной
type ShortfallPolicy string

const (
	// ShortfallBestEffort — вернуть сколько есть, записав предупреждение
	ShortfallBestEffort ShortfallPolicy = "best_effort"
	// ShortfallStrict — отказать до создания викторины и попытки
	ShortfallStrict ShortfallPolicy = "strict"
)

// Config содержит настройки генерации
type Config struct {
	// MinQuizzesForAdaptive — сколько завершённых викторин нужно для ADAPTIVE режима
	MinQuizzesForAdaptive int `mapstructure:"min_quizzes_for_adaptive"`

	// Base — базовые пропорции лёгких/средних/сложных
	Base Weights `mapstructure:"base"`

	// Noise — амплитуда шума RANDOM режима, каждый вес сдвигается в пределах ±Noise/2
	Noise float64 `mapstructure:"noise"`

	// AdaptiveAlpha — доля базовых пропорций при смешивании со слабостями (0..1)
	AdaptiveAlpha float64 `mapstructure:"adaptive_alpha"`

	// AllowedTotals — допустимые размеры викторины
	AllowedTotals []int `mapstructure:"allowed_totals"`

	// OverdrawFactor — во сколько раз больше вопросов запрашивать у хранилища
	OverdrawFactor int `mapstructure:"overdraw_factor"`

	// MaxLimit — верхняя граница размера викторины поверх AllowedTotals
	MaxLimit int `mapstructure:"max_limit"`

	ShortfallPolicy ShortfallPolicy `mapstructure:"shortfall_policy"`
}

// DefaultConfig возвращает настройки по умолчанию
func DefaultConfig() Config {
	return Config{
		MinQuizzesForAdaptive: 3,
		Base:                  Weights{Easy: 0.40, Medium: 0.40, Hard: 0.20},
		Noise:                 0.10,
		AdaptiveAlpha:         0.6,
		AllowedTotals:         []int{5, 10, 15, 20},
		OverdrawFactor:        2,
		MaxLimit:              100,
		ShortfallPolicy:       ShortfallBestEffort,
	}
}

// Validate проверяет согласованность настроек
func (c Config) Validate() error {
	if c.MinQuizzesForAdaptive < 0 {
		return fmt.Errorf("min_quizzes_for_adaptive must be >= 0, got %d", c.MinQuizzesForAdaptive)
	}
	if c.Base.Easy < 0 || c.Base.Medium < 0 || c.Base.Hard < 0 {
		return fmt.Errorf("base ratios must be non-negative, got %+v", c.Base)
	}
	if c.Noise < 0 {
		return fmt.Errorf("noise must be >= 0, got %v", c.Noise)
	}
	if c.AdaptiveAlpha < 0 || c.AdaptiveAlpha > 1 {
		return fmt.Errorf("adaptive_alpha must be in [0,1], got %v", c.AdaptiveAlpha)
	}
	if len(c.AllowedTotals) == 0 {
		return fmt.Errorf("allowed_totals must not be empty")
	}
	for _, t := range c.AllowedTotals {
		if t <= 0 {
			return fmt.Errorf("allowed_totals must be positive, got %d", t)
		}
	}
	if c.OverdrawFactor < 1 {
		return fmt.Errorf("overdraw_factor must be >= 1, got %d", c.OverdrawFactor)
	}
	if c.MaxLimit <= 0 {
		return fmt.Errorf("max_limit must be > 0, got %d", c.MaxLimit)
	}
	switch c.ShortfallPolicy {
	case ShortfallBestEffort, ShortfallStrict:
	default:
		return fmt.Errorf("unknown shortfall_policy %q", c.ShortfallPolicy)
	}
	return nil
}

// IsAllowedTotal проверяет, что размер входит в допустимый набор и не превышает MaxLimit
func (c Config) IsAllowedTotal(total int) bool {
	return total > 0 && total <= c.MaxLimit && slices.Contains(c.AllowedTotals, total)
}
