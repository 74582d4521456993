package service

import (
	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/repository"
)

type CatalogService interface {
	ListCategories() ([]model.Category, error)
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
}

func NewCatalogService(categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{categoryRepo: categoryRepo}
}

func (s *catalogService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}
