package repositories

import (
	"fmt"
	"strings"

	"catalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// Create persists a new product together with its image rows as one unit.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID retrieves a single product by its ID, images included.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Images").First(&product, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetByNaturalKey retrieves a product whose title or slug equals term under
// case-insensitive comparison, images included.
func (r *GORMProductRepository) GetByNaturalKey(term string) (*models.Product, error) {
	lower := strings.ToLower(term)
	var product models.Product
	err := r.db.Preload("Images").
		Where("LOWER(title) = ? OR LOWER(slug) = ?", lower, lower).
		First(&product).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get product by natural key %q: %w", term, err)
	}
	return &product, nil
}

// List returns a bounded slice of the catalog ordered by creation time, so
// offset pagination yields stable, non-overlapping pages.
func (r *GORMProductRepository) List(limit, offset int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Images").
		Order("created_at").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Update writes the merged root row and, when replaceImages is set, deletes
// every image row owned by the product and recreates product.Images in order.
// All of it runs in one transaction; any failure rolls the aggregate back to
// its pre-call state.
func (r *GORMProductRepository) Update(product *models.Product, replaceImages bool) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if replaceImages {
			if err := tx.Where("product_id = ?", product.ID).
				Delete(&models.ProductImage{}).Error; err != nil {
				return err
			}
			for i := range product.Images {
				product.Images[i].ID = 0
				product.Images[i].ProductID = product.ID
				if err := tx.Create(&product.Images[i]).Error; err != nil {
					return err
				}
			}
		}
		return tx.Omit(clause.Associations).Save(product).Error
	})
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ID, err)
	}
	return nil
}

// Delete removes a product and its image rows. The child rows are deleted
// imperatively inside the same transaction instead of relying on the FK
// cascade, so the behavior is identical across drivers.
func (r *GORMProductRepository) Delete(id string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).
			Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	return nil
}

// DeleteAll removes every product and every image row. Used by seeding only.
func (r *GORMProductRepository) DeleteAll() (int64, error) {
	var count int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		count = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete all products: %w", err)
	}
	return count, nil
}
