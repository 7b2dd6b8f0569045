package quizgen

import (
	"context"
	"fmt"
)

// Resolver раскрывает категорию на один уровень вниз
type Resolver struct {
	store CategoryStore
}

// NewResolver создаёт Resolver
func NewResolver(store CategoryStore) *Resolver {
	return &Resolver{store: store}
}

// ResolveSelectionIDs возвращает {categoryID} для листа или {categoryID} ∪ прямые
// потомки для родителя. Внуки не включаются. Ошибка хранилища (в том числе
// ErrNotFound) возвращается как есть.
func (r *Resolver) ResolveSelectionIDs(ctx context.Context, categoryID uint) ([]uint, error) {
	ids, err := r.store.GetParentAndChildrenIDs(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("resolve category #%d: %w", categoryID, err)
	}
	if len(ids) == 0 {
		return []uint{categoryID}, nil
	}
	// Сама категория всегда первой
	out := make([]uint, 0, len(ids))
	out = append(out, categoryID)
	for _, id := range ids {
		if id != categoryID {
			out = append(out, id)
		}
	}
	return out, nil
}
