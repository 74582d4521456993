package model

import "github.com/google/uuid"

// ProductImage is a stored media file attached to a product
type ProductImage struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"product"`
	Path      string    `gorm:"type:varchar(500);not null" json:"image"`
}

// ProductImageResponse mirrors the nested image shape inside a product
type ProductImageResponse struct {
	ID    uuid.UUID `json:"id"`
	Image string    `json:"image"`
}

// ToResponse converts ProductImage to ProductImageResponse
func (i *ProductImage) ToResponse() ProductImageResponse {
	return ProductImageResponse{ID: i.ID, Image: i.Path}
}
