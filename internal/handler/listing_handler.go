package handler

import (
	"strconv"

	"go-marketplace-api/internal/repository"
	"go-marketplace-api/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ListingHandler struct {
	listingService service.ListingService
}

func NewListingHandler(listingService service.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

func queryBool(c *fiber.Ctx, name string) *bool {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

func queryUint(c *fiber.Ctx, name string) *uint {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(n)
	return &u
}

// CreateProduct creates a listing owned by the caller
// POST /api/products/items
func (h *ListingHandler) CreateProduct(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req service.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid body"})
	}

	// Optional inline image, multipart only
	image, _ := c.FormFile("image")

	product, err := h.listingService.CreateProduct(userID, &req, image)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(product)
}

// GetProducts lists listings for any caller, filtered and newest-first
// GET /api/products/items?is_trade&is_sale&category&owner__username&search
func (h *ListingHandler) GetProducts(c *fiber.Ctx) error {
	filter := repository.ProductFilter{
		IsTrade:       queryBool(c, "is_trade"),
		IsSale:        queryBool(c, "is_sale"),
		CategoryID:    queryUint(c, "category"),
		OwnerUsername: c.Query("owner__username"),
		Search:        c.Query("search"),
	}

	products, err := h.listingService.SearchProducts(filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch products"})
	}

	return c.JSON(products)
}

// GetProduct returns one listing with nested images and category
// GET /api/products/items/:id
func (h *ListingHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.listingService.GetProduct(id)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(product)
}

// MyProducts lists only the caller's own listings
// GET /api/products/items/myproducts
func (h *ListingHandler) MyProducts(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	products, err := h.listingService.GetMyProducts(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch products"})
	}

	return c.JSON(products)
}

// UpdateProduct applies an owner-only partial update
// PUT/PATCH /api/products/items/:id
func (h *ListingHandler) UpdateProduct(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid body"})
	}

	product, err := h.listingService.UpdateProduct(id, userID, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(product)
}

// DeleteProduct removes an owner's listing together with its images
// DELETE /api/products/items/:id
func (h *ListingHandler) DeleteProduct(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.listingService.DeleteProduct(id, userID); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UploadImage attaches an image to a listing
// POST /api/products/items/:id/upload_image
func (h *ListingHandler) UploadImage(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Image file is required"})
	}

	if _, err := h.listingService.UploadImage(id, userID, file); err != nil {
		return serviceError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Image uploaded"})
}

// DeleteImage removes a single image from an owner's listing
// DELETE /api/products/items/:id/images/:imageID
func (h *ListingHandler) DeleteImage(c *fiber.Ctx) error {
	userID, err := callerID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	imageID, err := uuid.Parse(c.Params("imageID"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid image ID"})
	}

	if err := h.listingService.DeleteImage(id, imageID, userID); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
