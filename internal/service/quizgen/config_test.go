package quizgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 3, cfg.MinQuizzesForAdaptive)
	assert.Equal(t, Weights{Easy: 0.40, Medium: 0.40, Hard: 0.20}, cfg.Base)
	assert.Equal(t, 0.10, cfg.Noise)
	assert.Equal(t, 0.6, cfg.AdaptiveAlpha)
	assert.Equal(t, []int{5, 10, 15, 20}, cfg.AllowedTotals)
	assert.Equal(t, 2, cfg.OverdrawFactor)
	assert.Equal(t, ShortfallBestEffort, cfg.ShortfallPolicy)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"отрицательный порог", func(c *Config) { c.MinQuizzesForAdaptive = -1 }},
		{"отрицательный базовый вес", func(c *Config) { c.Base.Hard = -0.1 }},
		{"отрицательный шум", func(c *Config) { c.Noise = -0.1 }},
		{"alpha больше 1", func(c *Config) { c.AdaptiveAlpha = 1.01 }},
		{"alpha меньше 0", func(c *Config) { c.AdaptiveAlpha = -0.01 }},
		{"пустой набор размеров", func(c *Config) { c.AllowedTotals = nil }},
		{"нулевой размер в наборе", func(c *Config) { c.AllowedTotals = []int{0, 5} }},
		{"overdraw меньше 1", func(c *Config) { c.OverdrawFactor = 0 }},
		{"нулевой max_limit", func(c *Config) { c.MaxLimit = 0 }},
		{"неизвестная политика", func(c *Config) { c.ShortfallPolicy = "ignore" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_IsAllowedTotal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AllowedTotals = []int{5, 10, 200}
	cfg.MaxLimit = 100

	assert.True(t, cfg.IsAllowedTotal(5))
	assert.True(t, cfg.IsAllowedTotal(10))
	assert.False(t, cfg.IsAllowedTotal(7), "нет в наборе")
	assert.False(t, cfg.IsAllowedTotal(200), "больше max_limit")
	assert.False(t, cfg.IsAllowedTotal(0))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" adaptive ")
	assert.NoError(t, err)
	assert.Equal(t, ModeAdaptive, m)

	_, err = ParseMode("fast")
	assert.Error(t, err)
}
