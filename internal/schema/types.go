package schema

import (
	"time"

	"github.com/graphql-go/graphql"

	"github.com/nlstn/go-storefront/internal/models"
	"github.com/nlstn/go-storefront/internal/resolvers"
)

// Scalar fields without a Resolve use graphql-go's default resolver, which
// reads the struct field whose json tag matches the field name.

func (b *builder) category() *graphql.Object {
	if b.categoryType != nil {
		return b.categoryType
	}
	b.categoryType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":   &graphql.Field{Type: graphql.Int},
				"name": &graphql.Field{Type: graphql.String},
				"products": &graphql.Field{
					Type: graphql.NewList(b.product()),
					Resolve: b.resolve("Category", "products", func(p graphql.ResolveParams) (interface{}, error) {
						c, err := source[models.Category](p)
						if err != nil {
							return nil, err
						}
						return value(resolvers.NewProductResolver(b.catalog).ProductsByCategory(p.Context, c.ID))
					}),
				},
			}
		}),
	})
	return b.categoryType
}

func (b *builder) product() *graphql.Object {
	if b.productType != nil {
		return b.productType
	}
	b.productType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":          &graphql.Field{Type: graphql.ID},
				"name":        &graphql.Field{Type: graphql.String},
				"description": &graphql.Field{Type: graphql.String},
				"brand":       &graphql.Field{Type: graphql.String},
				"in_stock":    &graphql.Field{Type: graphql.Boolean},
				"category_id": &graphql.Field{Type: graphql.Int},
				"category": &graphql.Field{
					Type: b.category(),
					Resolve: b.resolve("Product", "category", func(p graphql.ResolveParams) (interface{}, error) {
						prod, err := source[models.Product](p)
						if err != nil {
							return nil, err
						}
						return nullable(resolvers.NewCategoryResolver(b.catalog).CategoryByID(p.Context, prod.CategoryID))
					}),
				},
				"price": &graphql.Field{
					Type: graphql.Float,
					Resolve: b.resolve("Product", "price", func(p graphql.ResolveParams) (interface{}, error) {
						prod, err := source[models.Product](p)
						if err != nil {
							return nil, err
						}
						return value(resolvers.NewProductResolver(b.catalog).PriceForProduct(p.Context, prod.ID))
					}),
				},
				"gallery": &graphql.Field{
					Type: graphql.NewList(graphql.String),
					Resolve: b.resolve("Product", "gallery", func(p graphql.ResolveParams) (interface{}, error) {
						prod, err := source[models.Product](p)
						if err != nil {
							return nil, err
						}
						return value(resolvers.NewGalleryResolver(b.catalog).GalleryForProduct(p.Context, prod.ID))
					}),
				},
				"attributes": &graphql.Field{
					Type: graphql.NewList(b.attributeSet()),
					Args: graphql.FieldConfigArgument{
						"type": &graphql.ArgumentConfig{Type: graphql.String},
					},
					Resolve: b.resolve("Product", "attributes", func(p graphql.ResolveParams) (interface{}, error) {
						prod, err := source[models.Product](p)
						if err != nil {
							return nil, err
						}
						attrType, err := stringArg(p.Args, "type")
						if err != nil {
							return nil, err
						}
						return value(resolvers.NewAttributeResolver(b.catalog).AttributesForProduct(p.Context, prod.ID, attrType))
					}),
				},
			}
		}),
	})
	return b.productType
}

func (b *builder) attributeSet() *graphql.Object {
	if b.attributeSetType != nil {
		return b.attributeSetType
	}
	b.attributeSetType = graphql.NewObject(graphql.ObjectConfig{
		Name: "AttributeSet",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.Int},
			"name": &graphql.Field{Type: graphql.String},
			"type": &graphql.Field{Type: graphql.String},
			"items": &graphql.Field{
				Type: graphql.NewList(b.attributeItem()),
				Resolve: b.resolve("AttributeSet", "items", func(p graphql.ResolveParams) (interface{}, error) {
					set, err := source[models.AttributeSet](p)
					if err != nil {
						return nil, err
					}
					return value(resolvers.NewAttributeResolver(b.catalog).AttributeItemsForAttribute(p.Context, set.ID))
				}),
			},
		},
	})
	return b.attributeSetType
}

func (b *builder) attributeItem() *graphql.Object {
	if b.attributeItemType != nil {
		return b.attributeItemType
	}
	b.attributeItemType = graphql.NewObject(graphql.ObjectConfig{
		Name: "AttributeItem",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.Int},
			"value":        &graphql.Field{Type: graphql.String},
			"displayValue": &graphql.Field{Type: graphql.String},
		},
	})
	return b.attributeItemType
}

func (b *builder) order() *graphql.Object {
	if b.orderType != nil {
		return b.orderType
	}
	b.orderType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Order",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":             &graphql.Field{Type: graphql.ID},
				"customer_name":  &graphql.Field{Type: graphql.String},
				"customer_email": &graphql.Field{Type: graphql.String},
				"status":         &graphql.Field{Type: graphql.String},
				"created_at": &graphql.Field{
					Type: graphql.String,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						o, err := source[models.Order](p)
						if err != nil {
							return nil, err
						}
						return o.CreatedAt.UTC().Format(time.RFC3339), nil
					},
				},
				"total": &graphql.Field{
					Type: graphql.Float,
					Resolve: b.resolve("Order", "total", func(p graphql.ResolveParams) (interface{}, error) {
						o, err := source[models.Order](p)
						if err != nil {
							return nil, err
						}
						return value(resolvers.NewOrderResolver(b.orders).OrderTotal(p.Context, o.ID))
					}),
				},
				"items": &graphql.Field{
					Type: graphql.NewList(b.orderItem()),
					Resolve: b.resolve("Order", "items", func(p graphql.ResolveParams) (interface{}, error) {
						o, err := source[models.Order](p)
						if err != nil {
							return nil, err
						}
						return value(resolvers.NewOrderResolver(b.orders).OrderItemsForOrder(p.Context, o.ID))
					}),
				},
			}
		}),
	})
	return b.orderType
}

func (b *builder) orderItem() *graphql.Object {
	if b.orderItemType != nil {
		return b.orderItemType
	}
	b.orderItemType = graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderItem",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":         &graphql.Field{Type: graphql.ID},
				"product_id": &graphql.Field{Type: graphql.ID},
				"quantity":   &graphql.Field{Type: graphql.Int},
				"price": &graphql.Field{
					Type: graphql.Float,
					Resolve: func(p graphql.ResolveParams) (interface{}, error) {
						item, err := source[models.OrderItem](p)
						if err != nil {
							return nil, err
						}
						return item.Price.InexactFloat64(), nil
					},
				},
				"product": &graphql.Field{
					Type: b.product(),
					Resolve: b.resolve("OrderItem", "product", func(p graphql.ResolveParams) (interface{}, error) {
						item, err := source[models.OrderItem](p)
						if err != nil {
							return nil, err
						}
						return nullable(resolvers.NewProductResolver(b.catalog).ProductByID(p.Context, item.ProductID))
					}),
				},
				"selected_attributes": &graphql.Field{
					Type: graphql.NewList(b.selectedAttribute()),
					Resolve: b.resolve("OrderItem", "selected_attributes", func(p graphql.ResolveParams) (interface{}, error) {
						item, err := source[models.OrderItem](p)
						if err != nil {
							return nil, err
						}
						return value(resolvers.NewOrderResolver(b.orders).OrderItemAttributesForItem(p.Context, item.ID))
					}),
				},
			}
		}),
	})
	return b.orderItemType
}

func (b *builder) selectedAttribute() *graphql.Object {
	if b.selectedAttributeType != nil {
		return b.selectedAttributeType
	}
	b.selectedAttributeType = graphql.NewObject(graphql.ObjectConfig{
		Name: "SelectedAttribute",
		Fields: graphql.Fields{
			"name":          &graphql.Field{Type: graphql.String},
			"attribute_id":  &graphql.Field{Type: graphql.Int},
			"value":         &graphql.Field{Type: graphql.String},
			"display_value": &graphql.Field{Type: graphql.String},
		},
	})
	return b.selectedAttributeType
}
