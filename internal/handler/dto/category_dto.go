package dto

import (
	"github.com/bellringer/quiz-api/internal/domain/entity"
)

// CategoryResponse — категория без вложенных детей
type CategoryResponse struct {
	ID       uint   `json:"id"`
	Area     string `json:"area,omitempty"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// StockResponse — запас вопросов категории вместе с потомками
type StockResponse struct {
	CategoryID uint  `json:"category_id"`
	Easy       int64 `json:"easy"`
	Medium     int64 `json:"medium"`
	Hard       int64 `json:"hard"`
	Total      int64 `json:"total"`
}

// NewCategoryResponse создает DTO категории
func NewCategoryResponse(c *entity.Category) *CategoryResponse {
	if c == nil {
		return nil
	}
	return &CategoryResponse{ID: c.ID, Area: c.Area, Name: c.Name, Slug: c.Slug, ParentID: c.ParentID}
}

// NewListCategoryResponse создает слайс DTO категорий
func NewListCategoryResponse(categories []entity.Category) []*CategoryResponse {
	list := make([]*CategoryResponse, len(categories))
	for i := range categories {
		list[i] = NewCategoryResponse(&categories[i])
	}
	return list
}

// NewStockResponse создает DTO запаса вопросов
func NewStockResponse(categoryID uint, counts map[entity.Difficulty]int64) *StockResponse {
	resp := &StockResponse{
		CategoryID: categoryID,
		Easy:       counts[entity.DifficultyEasy],
		Medium:     counts[entity.DifficultyMedium],
		Hard:       counts[entity.DifficultyHard],
	}
	resp.Total = resp.Easy + resp.Medium + resp.Hard
	return resp
}
