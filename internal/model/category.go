package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Category is a flat, named tag that products may reference
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required"`
	Slug string `gorm:"type:varchar(100);uniqueIndex" json:"slug"`
}

// Hook Before Save to derive the slug from the name when absent
func (c *Category) BeforeSave(tx *gorm.DB) (err error) {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Name)
	}
	return
}

// DefaultCategories is the administrative seed set
var DefaultCategories = []Category{
	{Name: "Electronics"},
	{Name: "Computers & Tablets"},
	{Name: "Phones & Accessories"},
	{Name: "Home & Living"},
	{Name: "Furniture"},
	{Name: "Fashion & Clothing"},
	{Name: "Shoes & Bags"},
	{Name: "Sports & Outdoor"},
	{Name: "Books, Music & Film"},
	{Name: "Toys & Hobby"},
	{Name: "Garden Tools"},
	{Name: "Kitchenware"},
	{Name: "Office & Stationery"},
	{Name: "Watches & Jewelry"},
	{Name: "Pet Supplies"},
}
