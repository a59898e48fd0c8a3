package models

import (
	"strings"
	"time"
)

// Product is the aggregate root of the catalog. It exclusively owns its
// image rows: they are created with it, replaced as a whole on update and
// removed with it on delete.
type Product struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string         `json:"title" gorm:"uniqueIndex;not null" validate:"required,min=1"`
	Price       float64        `json:"price" gorm:"default:0" validate:"gte=0"`
	Description string         `json:"description"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;not null"`
	Stock       int            `json:"stock" gorm:"default:0" validate:"gte=0"`
	Sizes       []string       `json:"sizes" gorm:"serializer:json"`
	Gender      string         `json:"gender" validate:"oneof=male female unisex"`
	Tags        []string       `json:"tags" gorm:"serializer:json"`
	UserID      string         `json:"user_id" gorm:"type:varchar(36);index;default:null"`
	User        *User          `json:"-" gorm:"foreignKey:UserID"`
	Images      []ProductImage `json:"images" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ProductImage is owned by exactly one product. The back-reference exists
// only so the cascade can find the rows; images are never loaded on their own.
type ProductImage struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	URL       string `json:"url" gorm:"not null"`
	ProductID string `json:"-" gorm:"type:varchar(36);index;not null"`
}

// ImageURLs flattens the owned image rows to their URL strings,
// preserving insertion order.
func (p *Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.URL)
	}
	return urls
}

// NormalizeSlug applies the canonical slug shape: lower case, spaces become
// hyphens, apostrophes are dropped. It is idempotent, and it is called
// explicitly at the start of every create and update so the stored slug can
// never drift out of normalized form.
func NormalizeSlug(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "'", "")
	return s
}
