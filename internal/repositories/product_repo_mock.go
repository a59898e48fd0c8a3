package repositories

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"catalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It mirrors the GORM implementation's semantics, including unique-violation
// signalling via gorm.ErrDuplicatedKey, so service behavior can be tested
// without a database.
type MockProductRepository struct {
	products map[string]models.Product
	order    []string // creation order, stands in for created_at ordering
	nextImg  uint
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

func (r *MockProductRepository) hasConflict(candidate *models.Product) bool {
	for id, p := range r.products {
		if id == candidate.ID {
			continue
		}
		if p.Title == candidate.Title || p.Slug == candidate.Slug {
			return true
		}
	}
	return false
}

func clone(p models.Product) models.Product {
	c := p
	c.Images = append([]models.ProductImage(nil), p.Images...)
	c.Sizes = append([]string(nil), p.Sizes...)
	c.Tags = append([]string(nil), p.Tags...)
	return c
}

// Create adds a new product and its images.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if r.hasConflict(product) {
		return fmt.Errorf("failed to create product: %w", gorm.ErrDuplicatedKey)
	}
	for i := range product.Images {
		r.nextImg++
		product.Images[i].ID = r.nextImg
		product.Images[i].ProductID = product.ID
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	r.products[product.ID] = clone(*product)
	r.order = append(r.order, product.ID)
	return nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, gorm.ErrRecordNotFound)
	}
	product = clone(product)
	return &product, nil
}

// GetByNaturalKey returns a product matching term by title or slug,
// case-insensitively.
func (r *MockProductRepository) GetByNaturalKey(term string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(term)
	for _, id := range r.order {
		p := r.products[id]
		if strings.ToLower(p.Title) == lower || strings.ToLower(p.Slug) == lower {
			p = clone(p)
			return &p, nil
		}
	}
	return nil, fmt.Errorf("failed to get product by natural key %q: %w", term, gorm.ErrRecordNotFound)
}

// List returns products in creation order, bounded by limit and offset.
func (r *MockProductRepository) List(limit, offset int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, limit)
	for i := offset; i < len(r.order) && len(products) < limit; i++ {
		products = append(products, clone(r.products[r.order[i]]))
	}
	return products, nil
}

// Update replaces the stored product. With replaceImages set the whole image
// collection is swapped; otherwise the stored collection is left untouched.
// The map entry is only written after every check passes, so a failure leaves
// the pre-call state intact, like a rolled-back transaction.
func (r *MockProductRepository) Update(product *models.Product, replaceImages bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("failed to update product %s: %w", product.ID, gorm.ErrRecordNotFound)
	}
	if r.hasConflict(product) {
		return fmt.Errorf("failed to update product %s: %w", product.ID, gorm.ErrDuplicatedKey)
	}
	if replaceImages {
		for i := range product.Images {
			r.nextImg++
			product.Images[i].ID = r.nextImg
			product.Images[i].ProductID = product.ID
		}
	} else {
		product.Images = append([]models.ProductImage(nil), existing.Images...)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[product.ID] = clone(*product)
	return nil
}

// Delete removes a product and its images.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("failed to delete product %s: %w", id, gorm.ErrRecordNotFound)
	}
	delete(r.products, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteAll removes every product.
func (r *MockProductRepository) DeleteAll() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := int64(len(r.products))
	r.products = make(map[string]models.Product)
	r.order = nil
	return count, nil
}
