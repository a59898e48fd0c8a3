package repositories

import (
	"catalog/internal/models"
)

// ProductRepository defines the interface for product aggregate data access.
// Lookups always return the aggregate with its image collection loaded.
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id string) (*models.Product, error)
	GetByNaturalKey(term string) (*models.Product, error)
	List(limit, offset int) ([]models.Product, error)
	// Update persists the root row and, when replaceImages is set, swaps the
	// whole image collection for product.Images. Root and children are written
	// in a single transaction: either everything commits or nothing does.
	Update(product *models.Product, replaceImages bool) error
	Delete(id string) error
	DeleteAll() (int64, error)
}
