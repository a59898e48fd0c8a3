package handlers

import (
	"errors"
	"fmt"
	"log"

	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// paginationQuery carries the pre-validated list parameters. limit must be
// positive and offset non-negative when supplied; the service assumes both.
type paginationQuery struct {
	Limit  int `query:"limit" validate:"omitempty,gt=0"`
	Offset int `query:"offset" validate:"omitempty,gte=0"`
}

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	auth     fiber.Handler
}

// NewProductHandler creates a new ProductHandler. auth guards the write
// routes.
func NewProductHandler(service *services.ProductService, auth fiber.Handler) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		auth:     auth,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:term", h.HandleGetProduct)
	productRoutes.Post("/", h.auth, h.HandleCreateProduct)
	productRoutes.Patch("/:id", h.auth, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.auth, h.HandleDeleteProduct)
}

// HandleListProducts returns a paginated slice of the catalog.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	query := paginationQuery{Limit: 10, Offset: 0}
	if err := c.QueryParser(&query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid pagination parameters",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	products, err := h.service.FindAll(query.Limit, query.Offset)
	if err != nil {
		return h.respondServiceError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProduct retrieves a single product by id, title or slug.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	term := c.Params("term")
	product, err := h.service.FindOnePlain(term)
	if err != nil {
		return h.respondServiceError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product owned by the authenticated user.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input services.CreateProductInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing create product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	product, err := h.service.CreateProduct(input, actingUser(c))
	if err != nil {
		return h.respondServiceError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial patch to an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id := c.Params("id")

	var input services.UpdateProductInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing update product body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationMessages(err),
		})
	}

	product, err := h.service.UpdateProduct(id, input, actingUser(c))
	if err != nil {
		return h.respondServiceError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product and its images.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.service.DeleteProduct(id)
	if err != nil {
		return h.respondServiceError(c, err, "Could not delete product")
	}
	return c.JSON(product)
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func (h *ProductHandler) respondServiceError(c *fiber.Ctx, err error, fallback string) error {
	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": notFound.Error(),
		})
	}
	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": conflict.Error(),
		})
	}
	log.Printf("%s: %v", fallback, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": fallback,
		"error":   err.Error(),
	})
}

// actingUser returns the authenticated user placed in the locals by the auth
// middleware, or nil on unguarded routes.
func actingUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func validationMessages(err error) map[string]string {
	messages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			messages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return messages
}
