package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is a listing offered for sale and/or trade by its owner
type Product struct {
	BaseModel
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"owner"`
	Owner       *User     `gorm:"foreignKey:OwnerID" json:"-"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title" validate:"required"`
	Description string    `gorm:"type:text;not null" json:"description" validate:"required"`
	CategoryID  *uint     `gorm:"index" json:"category_id"`
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	IsTrade     bool      `gorm:"default:false" json:"is_trade"`
	IsSale      bool      `gorm:"default:false" json:"is_sale"`
	IsSold      bool      `gorm:"default:false" json:"is_sold"`
	Location    string    `gorm:"type:varchar(255)" json:"location" validate:"required"`
	Price       *float64  `json:"price,omitempty"`

	Images []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// ProductResponse is the serialized listing with computed owner_username
// and nested category/images, as returned by every product endpoint.
type ProductResponse struct {
	ID            uuid.UUID              `json:"id"`
	Owner         uuid.UUID              `json:"owner"`
	OwnerUsername string                 `json:"owner_username"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	Category      *Category              `json:"category"`
	IsTrade       bool                   `json:"is_trade"`
	IsSale        bool                   `json:"is_sale"`
	IsSold        bool                   `json:"is_sold"`
	Location      string                 `json:"location"`
	CreatedAt     time.Time              `json:"created_at"`
	Price         *float64               `json:"price"`
	Images        []ProductImageResponse `json:"images"`
}

// ToResponse converts Product to ProductResponse
func (p *Product) ToResponse() ProductResponse {
	ownerUsername := ""
	if p.Owner != nil {
		ownerUsername = p.Owner.Username
	}

	images := make([]ProductImageResponse, len(p.Images))
	for i, img := range p.Images {
		images[i] = img.ToResponse()
	}

	return ProductResponse{
		ID:            p.ID,
		Owner:         p.OwnerID,
		OwnerUsername: ownerUsername,
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category,
		IsTrade:       p.IsTrade,
		IsSale:        p.IsSale,
		IsSold:        p.IsSold,
		Location:      p.Location,
		CreatedAt:     p.CreatedAt,
		Price:         p.Price,
		Images:        images,
	}
}
