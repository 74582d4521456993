package repository

import (
	"strings"

	"go-marketplace-api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows the public listing query. Nil/empty fields are
// not applied.
type ProductFilter struct {
	IsTrade       *bool
	IsSale        *bool
	CategoryID    *uint
	OwnerUsername string
	Search        string
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByOwner(ownerID uuid.UUID) ([]model.Product, error)
	Search(filter ProductFilter) ([]model.Product, error)
	Update(product *model.Product) error
	Delete(product *model.Product) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) preload() *gorm.DB {
	return r.db.Preload("Owner").Preload("Category").Preload("Images")
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.preload().First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByOwner(ownerID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.preload().
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Search(filter ProductFilter) ([]model.Product, error) {
	q := r.preload().Model(&model.Product{})

	if filter.IsTrade != nil {
		q = q.Where("products.is_trade = ?", *filter.IsTrade)
	}
	if filter.IsSale != nil {
		q = q.Where("products.is_sale = ?", *filter.IsSale)
	}
	if filter.CategoryID != nil {
		q = q.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.OwnerUsername != "" {
		q = q.Joins("JOIN users ON users.id = products.owner_id").
			Where("users.username = ?", filter.OwnerUsername)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(products.title) LIKE ? OR LOWER(products.description) LIKE ?", like, like)
	}

	var products []model.Product
	err := q.Order("products.created_at DESC, products.id").Find(&products).Error
	return products, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

// Delete removes the product together with its image rows. The explicit
// association delete keeps the cascade portable across drivers.
func (r *productRepo) Delete(product *model.Product) error {
	return r.db.Select(clause.Associations).Delete(product).Error
}
