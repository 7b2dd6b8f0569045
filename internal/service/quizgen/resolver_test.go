package quizgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bellringer/quiz-api/internal/pkg/errors"
)

func TestResolveSelectionIDs(t *testing.T) {
	tests := []struct {
		name   string
		id     uint
		stored []uint
		want   []uint
	}{
		{"лист", 5, []uint{5}, []uint{5}},
		{"родитель с детьми", 1, []uint{1, 2, 3}, []uint{1, 2, 3}},
		{"родитель всегда первый", 7, []uint{3, 7, 9}, []uint{7, 3, 9}},
		{"пустой ответ хранилища", 4, []uint{}, []uint{4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockCategoryStore)
			store.On("GetParentAndChildrenIDs", mock.Anything, tt.id).Return(tt.stored, nil)

			got, err := NewResolver(store).ResolveSelectionIDs(context.Background(), tt.id)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			store.AssertExpectations(t)
		})
	}
}

func TestResolveSelectionIDs_NotFound(t *testing.T) {
	store := new(MockCategoryStore)
	store.On("GetParentAndChildrenIDs", mock.Anything, uint(404)).Return(nil, apperrors.ErrNotFound)

	got, err := NewResolver(store).ResolveSelectionIDs(context.Background(), 404)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "ошибка хранилища не должна проглатываться")
}
