package repository

import (
	"go-marketplace-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImageRepository interface {
	Create(image *model.ProductImage) error
	FindByID(id uuid.UUID) (*model.ProductImage, error)
	Delete(id uuid.UUID) error
}

type imageRepo struct {
	db *gorm.DB
}

func NewImageRepo(db *gorm.DB) ImageRepository {
	return &imageRepo{db}
}

func (r *imageRepo) Create(image *model.ProductImage) error {
	return r.db.Create(image).Error
}

func (r *imageRepo) FindByID(id uuid.UUID) (*model.ProductImage, error) {
	var image model.ProductImage
	if err := r.db.First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.ProductImage{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
