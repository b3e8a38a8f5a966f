package resolvers

import (
	"context"

	"github.com/nlstn/go-storefront/internal/models"
	"github.com/nlstn/go-storefront/internal/repository"
)

// CatalogWriter is the write side of the catalog repository.
type CatalogWriter interface {
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) (bool, error)
	CreateProduct(ctx context.Context, in repository.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, patch repository.ProductPatch) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) (bool, error)
}

// OrderWriter is the write side of the order repository.
type OrderWriter interface {
	CreateOrder(ctx context.Context, in repository.OrderInput) (*models.Order, error)
	UpdateOrder(ctx context.Context, id string, patch repository.OrderPatch) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) (bool, error)
}

// MutationResolver runs the transactional writes. Unlike the read resolvers it
// reports a missing target as an error, except for deletes which report false.
type MutationResolver struct {
	catalog CatalogWriter
	orders  OrderWriter
}

// NewMutationResolver creates a mutation resolver.
func NewMutationResolver(catalog CatalogWriter, orders OrderWriter) MutationResolver {
	return MutationResolver{catalog: catalog, orders: orders}
}

func (r MutationResolver) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	return r.catalog.CreateCategory(ctx, name)
}

func (r MutationResolver) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	return r.catalog.DeleteCategory(ctx, id)
}

func (r MutationResolver) CreateProduct(ctx context.Context, in repository.ProductInput) (*models.Product, error) {
	return r.catalog.CreateProduct(ctx, in)
}

func (r MutationResolver) UpdateProduct(ctx context.Context, id string, patch repository.ProductPatch) (*models.Product, error) {
	return r.catalog.UpdateProduct(ctx, id, patch)
}

func (r MutationResolver) DeleteProduct(ctx context.Context, id string) (bool, error) {
	return r.catalog.DeleteProduct(ctx, id)
}

func (r MutationResolver) CreateOrder(ctx context.Context, in repository.OrderInput) (*models.Order, error) {
	return r.orders.CreateOrder(ctx, in)
}

func (r MutationResolver) UpdateOrder(ctx context.Context, id string, patch repository.OrderPatch) (*models.Order, error) {
	return r.orders.UpdateOrder(ctx, id, patch)
}

func (r MutationResolver) DeleteOrder(ctx context.Context, id string) (bool, error) {
	return r.orders.DeleteOrder(ctx, id)
}
