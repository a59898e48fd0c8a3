package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/pkg/rabbitmq"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProductInput is the validated payload for creating a product.
// Field-level validation (types, ranges, enums) happens in the handler;
// the service only enforces the aggregate invariants.
type CreateProductInput struct {
	Title       string   `json:"title" validate:"required,min=1"`
	Price       float64  `json:"price" validate:"omitempty,gte=0"`
	Description string   `json:"description"`
	Slug        string   `json:"slug"`
	Stock       int      `json:"stock" validate:"omitempty,gte=0"`
	Sizes       []string `json:"sizes" validate:"required,dive,required"`
	Gender      string   `json:"gender" validate:"required,oneof=male female unisex"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images" validate:"omitempty,dive,required"`
}

// UpdateProductInput is a partial patch: only non-nil fields overwrite the
// stored aggregate. Images distinguishes "absent" (nil, leave the collection
// alone) from "present as empty list" (replace with nothing) at the type
// level.
type UpdateProductInput struct {
	Title       *string   `json:"title" validate:"omitempty,min=1"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	Description *string   `json:"description"`
	Slug        *string   `json:"slug"`
	Stock       *int      `json:"stock" validate:"omitempty,gte=0"`
	Sizes       *[]string `json:"sizes"`
	Gender      *string   `json:"gender" validate:"omitempty,oneof=male female unisex"`
	Tags        *[]string `json:"tags"`
	Images      *[]string `json:"images"`
}

// ProductResponse is the plain aggregate projection handed to callers, with
// images flattened to their URL strings in insertion order.
type ProductResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	Slug        string   `json:"slug"`
	Stock       int      `json:"stock"`
	Sizes       []string `json:"sizes"`
	Gender      string   `json:"gender"`
	Tags        []string `json:"tags"`
	UserID      string   `json:"user_id"`
	Images      []string `json:"images"`
}

func toProductResponse(p *models.Product) ProductResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Slug:        p.Slug,
		Stock:       p.Stock,
		Sizes:       p.Sizes,
		Gender:      p.Gender,
		Tags:        tags,
		UserID:      p.UserID,
		Images:      p.ImageURLs(),
	}
}

// ProductService handles business logic for the product aggregate: creation
// with the slug invariant, flexible lookup by id or natural key, transactional
// full-aggregate updates and cascade deletion.
type ProductService struct {
	repo     repositories.ProductRepository
	mqClient *rabbitmq.Client
}

// NewProductService creates a new ProductService. mqClient may be nil, in
// which case catalog events are not published.
func NewProductService(repo repositories.ProductRepository, mqClient *rabbitmq.Client) *ProductService {
	return &ProductService{
		repo:     repo,
		mqClient: mqClient,
	}
}

// CreateProduct constructs a new aggregate from the validated input, applies
// the slug-derivation invariant, builds child image rows from the URL list
// (empty allowed) and persists root and children as one unit.
func (s *ProductService) CreateProduct(input CreateProductInput, owner *models.User) (*ProductResponse, error) {
	slugSource := input.Slug
	if slugSource == "" {
		slugSource = input.Title
	}

	images := make([]models.ProductImage, 0, len(input.Images))
	for _, url := range input.Images {
		images = append(images, models.ProductImage{URL: url})
	}

	product := &models.Product{
		Title:       input.Title,
		Price:       input.Price,
		Description: input.Description,
		Slug:        models.NormalizeSlug(slugSource),
		Stock:       input.Stock,
		Sizes:       input.Sizes,
		Gender:      input.Gender,
		Tags:        input.Tags,
		Images:      images,
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}
	if owner != nil {
		product.UserID = owner.ID
	}

	if err := s.repo.Create(product); err != nil {
		return nil, translateStorageError(err, conflictDetail(product))
	}

	s.publishEvent("product.created", product.ID)

	resp := toProductResponse(product)
	return &resp, nil
}

// FindAll returns a bounded offset slice of the catalog with images flattened.
// limit and offset are pre-validated by the caller.
func (s *ProductService) FindAll(limit, offset int) ([]ProductResponse, error) {
	products, err := s.repo.List(limit, offset)
	if err != nil {
		return nil, translateStorageError(err, "")
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, toProductResponse(&products[i]))
	}
	return responses, nil
}

// FindOne resolves an opaque search term to a product. A term shaped like a
// surrogate id is looked up by id equality; anything else runs a single
// natural-key query matching title or slug case-insensitively. Exactly one of
// the two lookups runs per call, and the image collection is always loaded.
func (s *ProductService) FindOne(term string) (*models.Product, error) {
	var (
		product *models.Product
		err     error
	)
	if _, uuidErr := uuid.Parse(term); uuidErr == nil {
		product, err = s.repo.GetByID(term)
	} else {
		product, err = s.repo.GetByNaturalKey(term)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Term: term}
		}
		return nil, translateStorageError(err, "")
	}
	return product, nil
}

// FindOnePlain resolves a term like FindOne but returns the flattened
// projection instead of the raw aggregate.
func (s *ProductService) FindOnePlain(term string) (*ProductResponse, error) {
	product, err := s.FindOne(term)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(product)
	return &resp, nil
}

// UpdateProduct applies a partial patch to the aggregate identified by id.
// The merged row, the re-derived slug, the owner reference and, when the
// patch carries an image list, the full image-collection replacement are
// persisted as one transaction; any failure leaves the stored aggregate
// exactly as it was.
func (s *ProductService) UpdateProduct(id string, input UpdateProductInput, owner *models.User) (*ProductResponse, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Term: id}
		}
		return nil, translateStorageError(err, "")
	}

	if input.Title != nil {
		product.Title = *input.Title
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Slug != nil {
		product.Slug = *input.Slug
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Sizes != nil {
		product.Sizes = *input.Sizes
	}
	if input.Gender != nil {
		product.Gender = *input.Gender
	}
	if input.Tags != nil {
		product.Tags = *input.Tags
	}

	// The invariant is re-applied on every update even when the caller does
	// not touch the slug field.
	product.Slug = models.NormalizeSlug(product.Slug)

	if owner != nil {
		product.UserID = owner.ID
	}

	replaceImages := input.Images != nil
	if replaceImages {
		images := make([]models.ProductImage, 0, len(*input.Images))
		for _, url := range *input.Images {
			images = append(images, models.ProductImage{URL: url})
		}
		product.Images = images
	}

	if err := s.repo.Update(product, replaceImages); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Term: id}
		}
		return nil, translateStorageError(err, conflictDetail(product))
	}

	s.publishEvent("product.updated", product.ID)

	return s.FindOnePlain(id)
}

// DeleteProduct removes the aggregate and its owned images, returning the
// deleted aggregate's last known state.
func (s *ProductService) DeleteProduct(id string) (*ProductResponse, error) {
	product, err := s.FindOne(id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(product.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Term: id}
		}
		return nil, translateStorageError(err, "")
	}

	s.publishEvent("product.deleted", product.ID)

	resp := toProductResponse(product)
	return &resp, nil
}

// DeleteAllProducts unconditionally removes every product and image row.
// Only the seeding routine calls this.
func (s *ProductService) DeleteAllProducts() (int64, error) {
	count, err := s.repo.DeleteAll()
	if err != nil {
		return 0, translateStorageError(err, "")
	}
	return count, nil
}

// conflictDetail names the values that can violate a uniqueness invariant.
func conflictDetail(product *models.Product) string {
	return fmt.Sprintf("product with title %q or slug %q", product.Title, product.Slug)
}

// publishEvent emits a catalog event. A missing broker is not an error:
// persistence has already committed by the time events are published.
func (s *ProductService) publishEvent(event, productID string) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"event":      event,
		"product_id": productID,
		"at":         time.Now().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("Failed to marshal %s event for product %s: %v", event, productID, err)
		return
	}
	if err := s.mqClient.Publish(event, body); err != nil {
		log.Printf("Warning: failed to publish %s event for product %s: %v", event, productID, err)
	}
}
