package services_test

import (
	"testing"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByNaturalKey(term string) (*models.Product, error) {
	args := m.Called(term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) List(limit, offset int) ([]models.Product, error) {
	args := m.Called(limit, offset)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(product *models.Product, replaceImages bool) error {
	args := m.Called(product, replaceImages)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteAll() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func TestProductService_CreateProduct_DerivesSlugFromTitle(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Create", mock.MatchedBy(func(p *models.Product) bool {
		return p.Slug == "womens-puffer-jacket"
	})).Return(nil).Once()

	resp, err := service.CreateProduct(services.CreateProductInput{
		Title:  "Women's Puffer Jacket",
		Sizes:  []string{"S", "M"},
		Gender: "female",
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "womens-puffer-jacket", resp.Slug)
	assert.NotNil(t, resp.Images)
	assert.Empty(t, resp.Images)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_NormalizesSuppliedSlug(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Create", mock.MatchedBy(func(p *models.Product) bool {
		return p.Slug == "custom-slug"
	})).Return(nil).Once()

	resp, err := service.CreateProduct(services.CreateProductInput{
		Title:  "Some Product",
		Slug:   "Custom Slug",
		Sizes:  []string{"M"},
		Gender: "unisex",
	}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "custom-slug", resp.Slug)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Conflict(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Create", mock.Anything).Return(gorm.ErrDuplicatedKey).Once()

	resp, err := service.CreateProduct(services.CreateProductInput{
		Title:  "Hat",
		Sizes:  []string{"M"},
		Gender: "unisex",
	}, nil)

	assert.Nil(t, resp)
	var conflict *services.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Detail, `"Hat"`)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_SetsOwner(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)
	owner := &models.User{ID: uuid.New().String(), Username: "owner"}

	mockRepo.On("Create", mock.MatchedBy(func(p *models.Product) bool {
		return p.UserID == owner.ID
	})).Return(nil).Once()

	_, err := service.CreateProduct(services.CreateProductInput{
		Title:  "Owned Product",
		Sizes:  []string{"M"},
		Gender: "male",
	}, owner)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_FindOne_DispatchesByTermShape(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	id := uuid.New().String()
	byID := &models.Product{ID: id, Title: "Red Shoes", Slug: "red-shoes"}

	// Identifier-shaped terms go straight to the id lookup.
	mockRepo.On("GetByID", id).Return(byID, nil).Once()
	product, err := service.FindOne(id)
	assert.NoError(t, err)
	assert.Equal(t, byID, product)

	// Anything else runs the single natural-key query.
	mockRepo.On("GetByNaturalKey", "RED-SHOES").Return(byID, nil).Once()
	product, err = service.FindOne("RED-SHOES")
	assert.NoError(t, err)
	assert.Equal(t, byID, product)

	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "GetByNaturalKey", id)
}

func TestProductService_FindOne_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	missingID := uuid.New().String()
	mockRepo.On("GetByID", missingID).Return(nil, gorm.ErrRecordNotFound).Once()

	product, err := service.FindOne(missingID)
	assert.Nil(t, product)
	var notFound *services.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.Equal(t, missingID, notFound.Term)
	mockRepo.AssertExpectations(t)
}

func TestProductService_FindOne_OpaqueInternalError(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetByNaturalKey", "red-shoes").Return(nil, assert.AnError).Once()

	product, err := service.FindOne("red-shoes")
	assert.Nil(t, product)
	var internal *services.InternalError
	assert.ErrorAs(t, err, &internal)
	assert.NotContains(t, err.Error(), assert.AnError.Error())
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NotFoundBeforeTransaction(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	id := uuid.New().String()
	mockRepo.On("GetByID", id).Return(nil, gorm.ErrRecordNotFound).Once()

	title := "anything"
	resp, err := service.UpdateProduct(id, services.UpdateProductInput{Title: &title}, nil)

	assert.Nil(t, resp)
	var notFound *services.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_UpdateProduct_MergesOnlySuppliedFields(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	id := uuid.New().String()
	stored := &models.Product{
		ID:          id,
		Title:       "Old Title",
		Price:       10,
		Description: "old description",
		Slug:        "old-title",
		Stock:       3,
		Sizes:       []string{"M"},
		Gender:      "male",
		Images:      []models.ProductImage{{ID: 1, URL: "old.jpg", ProductID: id}},
	}
	mockRepo.On("GetByID", id).Return(stored, nil).Twice() // merge load + reload

	price := 99.5
	mockRepo.On("Update", mock.MatchedBy(func(p *models.Product) bool {
		return p.Price == 99.5 &&
			p.Title == "Old Title" &&
			p.Slug == "old-title" &&
			len(p.Images) == 1
	}), false).Return(nil).Once()

	_, err := service.UpdateProduct(id, services.UpdateProductInput{Price: &price}, nil)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_ImageFieldSignals(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	id := uuid.New().String()
	stored := func() *models.Product {
		return &models.Product{
			ID:     id,
			Title:  "Shirt",
			Slug:   "shirt",
			Gender: "male",
			Images: []models.ProductImage{{ID: 1, URL: "a.jpg"}, {ID: 2, URL: "b.jpg"}},
		}
	}

	// images omitted: no replace cycle runs.
	mockRepo.On("GetByID", id).Return(stored(), nil).Twice()
	mockRepo.On("Update", mock.Anything, false).Return(nil).Once()
	_, err := service.UpdateProduct(id, services.UpdateProductInput{}, nil)
	assert.NoError(t, err)

	// images present as empty list: replace with nothing.
	mockRepo.On("GetByID", id).Return(stored(), nil).Twice()
	mockRepo.On("Update", mock.MatchedBy(func(p *models.Product) bool {
		return len(p.Images) == 0
	}), true).Return(nil).Once()
	empty := []string{}
	_, err = service.UpdateProduct(id, services.UpdateProductInput{Images: &empty}, nil)
	assert.NoError(t, err)

	// images present with URLs: replace in order.
	mockRepo.On("GetByID", id).Return(stored(), nil).Twice()
	mockRepo.On("Update", mock.MatchedBy(func(p *models.Product) bool {
		return len(p.Images) == 2 && p.Images[0].URL == "new1.jpg" && p.Images[1].URL == "new2.jpg"
	}), true).Return(nil).Once()
	urls := []string{"new1.jpg", "new2.jpg"}
	_, err = service.UpdateProduct(id, services.UpdateProductInput{Images: &urls}, nil)
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_RenormalizesSlug(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	id := uuid.New().String()
	stored := &models.Product{ID: id, Title: "Shirt", Slug: "shirt", Gender: "male"}
	mockRepo.On("GetByID", id).Return(stored, nil).Twice()

	slug := "My Fancy Slug's"
	mockRepo.On("Update", mock.MatchedBy(func(p *models.Product) bool {
		return p.Slug == "my-fancy-slugs"
	}), false).Return(nil).Once()

	_, err := service.UpdateProduct(id, services.UpdateProductInput{Slug: &slug}, nil)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_Conflict(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	id := uuid.New().String()
	stored := &models.Product{ID: id, Title: "Shirt", Slug: "shirt", Gender: "male"}
	mockRepo.On("GetByID", id).Return(stored, nil).Once()
	mockRepo.On("Update", mock.Anything, false).Return(gorm.ErrDuplicatedKey).Once()

	title := "Hat"
	resp, err := service.UpdateProduct(id, services.UpdateProductInput{Title: &title}, nil)

	assert.Nil(t, resp)
	var conflict *services.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Contains(t, conflict.Detail, `"Hat"`)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	id := uuid.New().String()
	stored := &models.Product{
		ID:     id,
		Title:  "Shirt",
		Slug:   "shirt",
		Gender: "male",
		Images: []models.ProductImage{{ID: 1, URL: "a.jpg"}},
	}
	mockRepo.On("GetByID", id).Return(stored, nil).Once()
	mockRepo.On("Delete", id).Return(nil).Once()

	resp, err := service.DeleteProduct(id)

	assert.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, resp.Images)
	mockRepo.AssertExpectations(t)
}

func TestProductService_FindAll_EmptyCatalog(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("List", 10, 0).Return([]models.Product{}, nil).Once()

	products, err := service.FindAll(10, 0)

	assert.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("DeleteAll").Return(int64(7), nil).Once()

	count, err := service.DeleteAllProducts()

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
	mockRepo.AssertExpectations(t)
}

// The in-memory repository mirrors the transactional semantics, which lets
// the full update flow be exercised statefully without a database.
func TestProductService_UpdateFlow_InMemory(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	service := services.NewProductService(repo, nil)

	created, err := service.CreateProduct(services.CreateProductInput{
		Title:  "Red Shoes",
		Sizes:  []string{"40", "41"},
		Gender: "unisex",
		Images: []string{"one.jpg", "two.jpg", "three.jpg"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "red-shoes", created.Slug)
	assert.Equal(t, []string{"one.jpg", "two.jpg", "three.jpg"}, created.Images)

	// Resolver accepts title and slug case-insensitively.
	for _, term := range []string{"red-shoes", "RED-SHOES", "Red Shoes"} {
		found, err := service.FindOnePlain(term)
		assert.NoError(t, err, "term %q", term)
		assert.Equal(t, created.ID, found.ID, "term %q", term)
	}

	// Omitted image field leaves the collection untouched.
	price := 120.0
	updated, err := service.UpdateProduct(created.ID, services.UpdateProductInput{Price: &price}, nil)
	assert.NoError(t, err)
	assert.Equal(t, 120.0, updated.Price)
	assert.Equal(t, []string{"one.jpg", "two.jpg", "three.jpg"}, updated.Images)

	// Empty list replaces the collection with nothing.
	empty := []string{}
	updated, err = service.UpdateProduct(created.ID, services.UpdateProductInput{Images: &empty}, nil)
	assert.NoError(t, err)
	assert.Empty(t, updated.Images)

	deleted, err := service.DeleteProduct(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = service.FindOne(created.ID)
	var notFound *services.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}
