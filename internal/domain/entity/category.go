package entity

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category — узел дерева категорий. ParentID == nil означает корневую категорию.
type Category struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Area      string     `gorm:"size:100;index:idx_categories_area" json:"area,omitempty"`
	Name      string     `gorm:"size:150;not null;uniqueIndex:uk_parent_name,priority:2" json:"name"`
	Slug      string     `gorm:"size:200;not null;uniqueIndex:uk_categories_slug" json:"slug"`
	ParentID  *uint      `gorm:"index:idx_categories_parent;uniqueIndex:uk_parent_name,priority:1" json:"parent_id,omitempty"`
	Parent    *Category  `gorm:"foreignKey:ParentID" json:"-"`
	Children  []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Category) TableName() string {
	return "categories"
}

// IsRoot проверяет, что у категории нет родителя
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

var (
	slugInvalid = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	slugDashes  = regexp.MustCompile(`-{2,}`)
)

// BuildSlug строит URL-friendly slug из области, имени родителя и имени:
// area="frontend", parent="React", name="Hooks" → "frontend-react-hooks".
// Диакритика снимается ("Café" → "cafe"), остальные символы заменяются на "-".
func BuildSlug(area, parentName, name string) string {
	base := strings.Join([]string{slugPart(area), slugPart(parentName), slugPart(name)}, "-")
	base = slugDashes.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	return strings.ToLower(base)
}

func slugPart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return slugInvalid.ReplaceAllString(folded, "-")
}
