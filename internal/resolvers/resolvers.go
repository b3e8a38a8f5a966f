// Package resolvers turns a parent identity into the value of one field.
//
// Every resolver is a small value type holding nothing but a store handle. The
// schema constructs one per field invocation, so nothing is cached between
// sibling fields or between requests. A missing row is reported as a nil value,
// never as an error.
package resolvers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nlstn/go-storefront/internal/models"
	"github.com/nlstn/go-storefront/internal/repository"
)

// CatalogReader is the read side of the catalog repository.
type CatalogReader interface {
	Categories(ctx context.Context) ([]*models.Category, error)
	CategoryByID(ctx context.Context, id int64) (*models.Category, error)
	CategoryByName(ctx context.Context, name string) (*models.Category, error)
	Products(ctx context.Context) ([]*models.Product, error)
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	ProductsByCategory(ctx context.Context, categoryID int64) ([]*models.Product, error)
	PriceForProduct(ctx context.Context, productID string) (decimal.Decimal, error)
	GalleryForProduct(ctx context.Context, productID string) ([]string, error)
	AttributesForProduct(ctx context.Context, productID string, attrType string) ([]*models.AttributeSet, error)
	AttributeItemsForAttribute(ctx context.Context, attributeID int64) ([]*models.AttributeItem, error)
}

// OrderReader is the read side of the order repository.
type OrderReader interface {
	Orders(ctx context.Context) ([]*models.Order, error)
	OrderByID(ctx context.Context, id string) (*models.Order, error)
	OrderItems(ctx context.Context, orderID string) ([]*models.OrderItem, error)
	SelectedAttributes(ctx context.Context, orderItemID string) ([]*models.SelectedAttribute, error)
	OrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error)
}

// one converts a not-found lookup into a nil result.
func one[T any](v *T, err error) (*T, error) {
	if repository.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// CategoryResolver resolves categories.
type CategoryResolver struct {
	store CatalogReader
}

// NewCategoryResolver creates a category resolver.
func NewCategoryResolver(store CatalogReader) CategoryResolver {
	return CategoryResolver{store: store}
}

func (r CategoryResolver) Categories(ctx context.Context) ([]*models.Category, error) {
	return r.store.Categories(ctx)
}

func (r CategoryResolver) CategoryByName(ctx context.Context, name string) (*models.Category, error) {
	return one(r.store.CategoryByName(ctx, name))
}

func (r CategoryResolver) CategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	return one(r.store.CategoryByID(ctx, id))
}

// ProductResolver resolves products and their prices.
type ProductResolver struct {
	store CatalogReader
}

// NewProductResolver creates a product resolver.
func NewProductResolver(store CatalogReader) ProductResolver {
	return ProductResolver{store: store}
}

func (r ProductResolver) Products(ctx context.Context) ([]*models.Product, error) {
	return r.store.Products(ctx)
}

func (r ProductResolver) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	return one(r.store.ProductByID(ctx, id))
}

// ProductsByCategory lists the products of a category. The wildcard category
// lists every product.
func (r ProductResolver) ProductsByCategory(ctx context.Context, categoryID int64) ([]*models.Product, error) {
	return r.store.ProductsByCategory(ctx, categoryID)
}

// PriceForProduct returns the current price, or 0 when the product has none.
func (r ProductResolver) PriceForProduct(ctx context.Context, productID string) (float64, error) {
	amount, err := r.store.PriceForProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return amount.InexactFloat64(), nil
}

// AttributeResolver resolves attribute sets and their items.
type AttributeResolver struct {
	store CatalogReader
}

// NewAttributeResolver creates an attribute resolver.
func NewAttributeResolver(store CatalogReader) AttributeResolver {
	return AttributeResolver{store: store}
}

// AttributesForProduct lists the attribute sets of a product, restricted to
// attrType when it is not empty.
func (r AttributeResolver) AttributesForProduct(ctx context.Context, productID, attrType string) ([]*models.AttributeSet, error) {
	return r.store.AttributesForProduct(ctx, productID, attrType)
}

func (r AttributeResolver) AttributeItemsForAttribute(ctx context.Context, attributeID int64) ([]*models.AttributeItem, error) {
	return r.store.AttributeItemsForAttribute(ctx, attributeID)
}

// GalleryResolver resolves product images.
type GalleryResolver struct {
	store CatalogReader
}

// NewGalleryResolver creates a gallery resolver.
func NewGalleryResolver(store CatalogReader) GalleryResolver {
	return GalleryResolver{store: store}
}

// GalleryForProduct returns image URLs in insertion order, never nil.
func (r GalleryResolver) GalleryForProduct(ctx context.Context, productID string) ([]string, error) {
	urls, err := r.store.GalleryForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}

// OrderResolver resolves orders, their lines and attribute choices.
type OrderResolver struct {
	store OrderReader
}

// NewOrderResolver creates an order resolver.
func NewOrderResolver(store OrderReader) OrderResolver {
	return OrderResolver{store: store}
}

func (r OrderResolver) OrdersAll(ctx context.Context) ([]*models.Order, error) {
	return r.store.Orders(ctx)
}

func (r OrderResolver) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	return one(r.store.OrderByID(ctx, id))
}

func (r OrderResolver) OrderItemsForOrder(ctx context.Context, orderID string) ([]*models.OrderItem, error) {
	return r.store.OrderItems(ctx, orderID)
}

func (r OrderResolver) OrderItemAttributesForItem(ctx context.Context, orderItemID string) ([]*models.SelectedAttribute, error) {
	return r.store.SelectedAttributes(ctx, orderItemID)
}

// OrderTotal sums snapshot price times quantity over the order's lines.
func (r OrderResolver) OrderTotal(ctx context.Context, orderID string) (float64, error) {
	total, err := r.store.OrderTotal(ctx, orderID)
	if err != nil {
		return 0, err
	}
	return total.InexactFloat64(), nil
}
