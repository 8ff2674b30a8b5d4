package handlers

import (
	"errors"
	"fmt"
	"log"

	"katalog/internal/models"
	"katalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles HTTP requests for the product catalog.
type CatalogHandler struct {
	service *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service: service,
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleListCategories)

	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Post("/image-upload", h.HandleCreateImageUploadURL)
	productRoutes.Put("/:id", h.HandleEditProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// categoryResponse is the joined category shape embedded in product listings.
type categoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// productResponse is the client-facing product shape with its category
// joined by id and name instead of the full record.
type productResponse struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Price    int64             `json:"price"`
	ImageURL string            `json:"imageUrl"`
	Category *categoryResponse `json:"category"`
}

func toProductResponse(p models.Product) productResponse {
	resp := productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
	if p.Category != nil {
		resp.Category = &categoryResponse{ID: p.Category.ID, Name: p.Category.Name}
	}
	return resp
}

// HandleListProducts lists products, optionally filtered by the categoryId
// query parameter. "ALL" (or no parameter) returns the full set.
func (h *CatalogHandler) HandleListProducts(c *fiber.Ctx) error {
	categoryID := c.Query("categoryId", services.CategoryFilterAll)

	products, err := h.service.ListProducts(categoryID)
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	return c.JSON(resp)
}

// HandleListCategories lists all categories for the filter control.
func (h *CatalogHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories()
	if err != nil {
		log.Printf("Error listing categories: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve categories",
			"error":   err.Error(),
		})
	}
	return c.JSON(categories)
}

// HandleCreateProduct creates a new product from a pre-uploaded image URL
// and form fields.
func (h *CatalogHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var input services.ProductInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.CreateProduct(input)
	if err != nil {
		return h.respondServiceError(c, err, "Could not create product")
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleEditProduct replaces every client-writable field of an existing
// product. Callers must resend all fields; there is no partial patch.
func (h *CatalogHandler) HandleEditProduct(c *fiber.Ctx) error {
	productID := c.Params("id")

	var input services.ProductInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing edit product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.EditProduct(productID, input)
	if err != nil {
		return h.respondServiceError(c, err, "Could not edit product")
	}

	resp := toProductResponse(*product)
	return c.JSON(resp)
}

// HandleDeleteProduct permanently removes a product and returns its prior
// state for confirmation UIs.
func (h *CatalogHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")

	product, err := h.service.DeleteProduct(productID)
	if err != nil {
		return h.respondServiceError(c, err, "Could not delete product")
	}

	return c.JSON(product)
}

// HandleCreateImageUploadURL issues a signed, time-limited upload location
// for a product image. The client uploads the bytes directly to object
// storage; this service never touches them.
func (h *CatalogHandler) HandleCreateImageUploadURL(c *fiber.Ctx) error {
	signed, err := h.service.CreateProductImageUploadURL(c.UserContext())
	if err != nil {
		return h.respondServiceError(c, err, "Could not issue upload URL")
	}
	return c.JSON(signed)
}

// respondServiceError maps the service error taxonomy onto HTTP statuses:
// validation 400, missing product 404, missing category 422, storage
// issuance 502, anything else 500.
func (h *CatalogHandler) respondServiceError(c *fiber.Ctx, err error, msg string) error {
	log.Printf("%s: %v", msg, err)

	switch {
	case errors.Is(err, services.ErrValidation):
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorMessages := make(map[string]string)
			for _, e := range validationErrors {
				errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
			}
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"errors":  errorMessages,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": msg,
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrCategoryNotFound):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": msg,
			"error":   err.Error(),
		})
	case errors.Is(err, services.ErrStorageUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": msg,
			"error":   err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": msg,
			"error":   err.Error(),
		})
	}
}
