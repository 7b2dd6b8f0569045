package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntArg(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{"число", []string{"down", "2"}, 2, false},
		{"ноль", []string{"force", "0"}, 0, false},
		{"нет аргумента", []string{"down"}, 0, true},
		{"не число", []string{"down", "two"}, 0, true},
		{"отрицательное", []string{"force", "-1"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := intArg(tt.args)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("MIGRATE_TEST_PATH", "custom.yaml")

	assert.Equal(t, "custom.yaml", envOr("MIGRATE_TEST_PATH", "config/config.yaml"))
	assert.Equal(t, "config/config.yaml", envOr("MIGRATE_TEST_UNSET", "config/config.yaml"))
}
