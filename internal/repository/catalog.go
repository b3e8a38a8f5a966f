package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nlstn/go-storefront/internal/models"
)

// WildcardCategoryID is the category id that, when used as a product filter,
// matches every product in addition to the products filed under it.
const WildcardCategoryID int64 = 1

// CatalogRepository reads and writes the catalog aggregate.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a catalog repository on top of db.
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// Categories returns every category ordered by id.
func (r *CatalogRepository) Categories(ctx context.Context) ([]*models.Category, error) {
	var list []*models.Category
	if err := conn(ctx, r.db).Order("id").Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

// CategoryByID returns ErrNotFound when no category has the id.
func (r *CatalogRepository) CategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	if err := conn(ctx, r.db).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// CategoryByName returns ErrNotFound when no category has the name.
func (r *CatalogRepository) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var c models.Category
	if err := conn(ctx, r.db).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

// Products returns every product.
func (r *CatalogRepository) Products(ctx context.Context) ([]*models.Product, error) {
	var list []*models.Product
	if err := conn(ctx, r.db).Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

// ProductByID returns ErrNotFound when no product has the id.
func (r *CatalogRepository) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := conn(ctx, r.db).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

// ProductsByCategory returns the products filed under categoryID. The
// WildcardCategoryID yields the union of its own products and all products.
func (r *CatalogRepository) ProductsByCategory(ctx context.Context, categoryID int64) ([]*models.Product, error) {
	q := conn(ctx, r.db)
	if categoryID != WildcardCategoryID {
		q = q.Where("category_id = ?", categoryID)
	}
	var list []*models.Product
	if err := q.Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

// PriceForProduct returns the amount of the first price row of the product,
// or zero when it has none. Inside a transaction bound to ctx the read joins it.
func (r *CatalogRepository) PriceForProduct(ctx context.Context, productID string) (decimal.Decimal, error) {
	var prices []models.Price
	if err := conn(ctx, r.db).Where("product_id = ?", productID).Order("id").Limit(1).Find(&prices).Error; err != nil {
		return decimal.Zero, translateError(err)
	}
	if len(prices) == 0 {
		return decimal.Zero, nil
	}
	return prices[0].Amount, nil
}

// GalleryForProduct returns the image URLs of the product in insertion order.
func (r *CatalogRepository) GalleryForProduct(ctx context.Context, productID string) ([]string, error) {
	urls := make([]string, 0)
	if err := conn(ctx, r.db).Model(&models.GalleryImage{}).
		Where("product_id = ?", productID).
		Order("id").
		Pluck("url", &urls).Error; err != nil {
		return nil, translateError(err)
	}
	return urls, nil
}

// AttributesForProduct returns the attribute sets of the product. A non-empty
// attrType keeps only sets of that type.
func (r *CatalogRepository) AttributesForProduct(ctx context.Context, productID string, attrType string) ([]*models.AttributeSet, error) {
	q := conn(ctx, r.db).Where("product_id = ?", productID)
	if attrType != "" {
		q = q.Where("type = ?", attrType)
	}
	var list []*models.AttributeSet
	if err := q.Order("id").Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

// AttributeItemsForAttribute returns the items of an attribute set.
func (r *CatalogRepository) AttributeItemsForAttribute(ctx context.Context, attributeID int64) ([]*models.AttributeItem, error) {
	var list []*models.AttributeItem
	if err := conn(ctx, r.db).Where("attribute_id = ?", attributeID).Order("id").Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

// Ping reports whether the store is reachable.
func (r *CatalogRepository) Ping(ctx context.Context) error {
	return Ping(ctx, r.db)
}
