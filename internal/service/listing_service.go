package service

import (
	"errors"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
	"go-marketplace-api/internal/ws"
	"go-marketplace-api/pkg/storage"
	"go-marketplace-api/pkg/validator"
)

type ListingService interface {
	CreateProduct(ownerID uuid.UUID, req *CreateProductRequest, image *multipart.FileHeader) (*model.ProductResponse, error)
	SearchProducts(filter repository.ProductFilter) ([]model.ProductResponse, error)
	GetProduct(id uuid.UUID) (*model.ProductResponse, error)
	GetMyProducts(ownerID uuid.UUID) ([]model.ProductResponse, error)
	UpdateProduct(id, callerID uuid.UUID, req *UpdateProductRequest) (*model.ProductResponse, error)
	DeleteProduct(id, callerID uuid.UUID) error
	UploadImage(productID, callerID uuid.UUID, file *multipart.FileHeader) (*model.ProductImage, error)
	DeleteImage(productID, imageID, callerID uuid.UUID) error
}

// CreateProductRequest represents a new listing (JSON or multipart).
// The owner is never part of the payload; it is the caller.
type CreateProductRequest struct {
	Title       string   `json:"title" form:"title" validate:"required"`
	Description string   `json:"description" form:"description" validate:"required"`
	CategoryID  *uint    `json:"category_id" form:"category_id"`
	IsTrade     bool     `json:"is_trade" form:"is_trade"`
	IsSale      bool     `json:"is_sale" form:"is_sale"`
	Location    string   `json:"location" form:"location" validate:"required"`
	Price       *float64 `json:"price" form:"price"`
}

// UpdateProductRequest carries the owner-editable fields. is_sold,
// created_at and the owner have no counterpart here and therefore
// cannot be changed through this path.
type UpdateProductRequest struct {
	Title       *string  `json:"title" form:"title"`
	Description *string  `json:"description" form:"description"`
	CategoryID  *uint    `json:"category_id" form:"category_id"`
	IsTrade     *bool    `json:"is_trade" form:"is_trade"`
	IsSale      *bool    `json:"is_sale" form:"is_sale"`
	Location    *string  `json:"location" form:"location"`
	Price       *float64 `json:"price" form:"price"`
}

type listingService struct {
	productRepo  repository.ProductRepository
	imageRepo    repository.ImageRepository
	categoryRepo repository.CategoryRepository
	store        *storage.Storage
	hub          *ws.Hub
	log          *logrus.Logger
}

func NewListingService(
	productRepo repository.ProductRepository,
	imageRepo repository.ImageRepository,
	categoryRepo repository.CategoryRepository,
	store *storage.Storage,
	hub *ws.Hub,
	log *logrus.Logger,
) ListingService {
	return &listingService{
		productRepo:  productRepo,
		imageRepo:    imageRepo,
		categoryRepo: categoryRepo,
		store:        store,
		hub:          hub,
		log:          log,
	}
}

func (s *listingService) publish(eventType string, product *model.Product) {
	if s.hub == nil {
		return
	}
	go s.hub.Publish(map[string]any{
		"type": eventType,
		"product": map[string]any{
			"id":    product.ID,
			"title": product.Title,
			"owner": product.OwnerID,
		},
	})
}

func (s *listingService) CreateProduct(ownerID uuid.UUID, req *CreateProductRequest, image *multipart.FileHeader) (*model.ProductResponse, error) {
	// 1. Struct validation
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, &ValidationError{Fields: validator.Fields(errs)}
	}

	// 2. A listing must be offered for sale, for trade, or both
	if !req.IsTrade && !req.IsSale {
		return nil, NewValidationError("non_field_errors", "a listing must be for sale, for trade, or both")
	}

	// 3. Category is optional but must exist when given
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(*req.CategoryID); err != nil {
			return nil, NewValidationError("category_id", "unknown category")
		}
	}

	product := &model.Product{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		IsTrade:     req.IsTrade,
		IsSale:      req.IsSale,
		Location:    req.Location,
		Price:       req.Price,
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	// 4. Optional inline image. The listing exists either way; a failed
	// write only skips the attachment.
	if image != nil {
		if err := s.attachImage(product.ID, image); err != nil {
			s.log.WithError(err).WithField("product_id", product.ID).Warn("inline image not attached, continuing without it")
		}
	}

	created, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		return nil, err
	}

	s.publish("listing_created", created)

	resp := created.ToResponse()
	return &resp, nil
}

func (s *listingService) SearchProducts(filter repository.ProductFilter) ([]model.ProductResponse, error) {
	products, err := s.productRepo.Search(filter)
	if err != nil {
		return nil, err
	}
	return toResponses(products), nil
}

func (s *listingService) GetProduct(id uuid.UUID) (*model.ProductResponse, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	resp := product.ToResponse()
	return &resp, nil
}

func (s *listingService) GetMyProducts(ownerID uuid.UUID) ([]model.ProductResponse, error) {
	products, err := s.productRepo.FindByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	return toResponses(products), nil
}

func (s *listingService) UpdateProduct(id, callerID uuid.UUID, req *UpdateProductRequest) (*model.ProductResponse, error) {
	product, err := s.requireOwned(id, callerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		product.Title = *req.Title
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.FindByID(*req.CategoryID); err != nil {
			return nil, NewValidationError("category_id", "unknown category")
		}
		product.CategoryID = req.CategoryID
	}
	if req.IsTrade != nil {
		product.IsTrade = *req.IsTrade
	}
	if req.IsSale != nil {
		product.IsSale = *req.IsSale
	}
	if req.Location != nil {
		product.Location = *req.Location
	}
	if req.Price != nil {
		product.Price = req.Price
	}

	if !product.IsTrade && !product.IsSale {
		return nil, NewValidationError("non_field_errors", "a listing must be for sale, for trade, or both")
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	updated, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		return nil, err
	}

	s.publish("listing_updated", updated)

	resp := updated.ToResponse()
	return &resp, nil
}

func (s *listingService) DeleteProduct(id, callerID uuid.UUID) error {
	product, err := s.requireOwned(id, callerID)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		paths = append(paths, img.Path)
	}

	if err := s.productRepo.Delete(product); err != nil {
		return err
	}

	// Best-effort file cleanup after the rows are gone. A failed removal
	// leaves an orphaned file, never a dangling record.
	for _, path := range paths {
		if err := s.store.Remove(path); err != nil {
			s.log.WithError(err).WithField("path", path).Warn("could not remove image file")
		}
	}

	s.publish("listing_deleted", product)

	return nil
}

// UploadImage attaches a file to a product. Any authenticated user may
// do this, not only the owner; the upstream contract works that way and
// clients depend on it.
func (s *listingService) UploadImage(productID, callerID uuid.UUID, file *multipart.FileHeader) (*model.ProductImage, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	path, err := s.store.SaveProductImage(productID, file)
	if err != nil {
		return nil, err
	}

	image := &model.ProductImage{ProductID: productID, Path: path}
	if err := s.imageRepo.Create(image); err != nil {
		// The record is authoritative; drop the orphaned file.
		if rmErr := s.store.Remove(path); rmErr != nil {
			s.log.WithError(rmErr).WithField("path", path).Warn("could not remove image file")
		}
		return nil, err
	}

	return image, nil
}

func (s *listingService) DeleteImage(productID, imageID, callerID uuid.UUID) error {
	if _, err := s.requireOwned(productID, callerID); err != nil {
		return err
	}

	image, err := s.imageRepo.FindByID(imageID)
	if err != nil || image.ProductID != productID {
		return ErrImageNotFound
	}

	if err := s.imageRepo.Delete(image.ID); err != nil {
		return err
	}

	if err := s.store.Remove(image.Path); err != nil {
		s.log.WithError(err).WithField("path", image.Path).Warn("could not remove image file")
	}

	return nil
}

// requireOwned loads a product and enforces the ownership gate for
// mutating calls: only the listing's owner may pass.
func (s *listingService) requireOwned(id, callerID uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if product.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	return product, nil
}

func (s *listingService) attachImage(productID uuid.UUID, file *multipart.FileHeader) error {
	path, err := s.store.SaveProductImage(productID, file)
	if err != nil {
		return err
	}
	return s.imageRepo.Create(&model.ProductImage{ProductID: productID, Path: path})
}

func toResponses(products []model.Product) []model.ProductResponse {
	responses := make([]model.ProductResponse, len(products))
	for i := range products {
		responses[i] = products[i].ToResponse()
	}
	return responses
}
