package schema

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/nlstn/go-storefront/internal/resolvers"
)

func (b *builder) attributeSetInputType() *graphql.InputObject {
	if b.attributeSetInput != nil {
		return b.attributeSetInput
	}
	item := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "AttributeItemInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"value":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"displayValue": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	b.attributeSetInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "AttributeSetInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"type":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"items": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(item))},
		},
	})
	return b.attributeSetInput
}

// productInputFields returns the product input fields; on create the name and
// price are mandatory.
func (b *builder) productInputFields(create bool) graphql.InputObjectConfigFieldMap {
	var name, price graphql.Input = graphql.String, graphql.Float
	if create {
		name, price = graphql.NewNonNull(graphql.String), graphql.NewNonNull(graphql.Float)
	}
	return graphql.InputObjectConfigFieldMap{
		"name":        &graphql.InputObjectFieldConfig{Type: name},
		"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"brand":       &graphql.InputObjectFieldConfig{Type: graphql.String},
		"category_id": &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"category":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"in_stock":    &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"price":       &graphql.InputObjectFieldConfig{Type: price},
		"gallery":     &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.String)},
		"attributes":  &graphql.InputObjectFieldConfig{Type: graphql.NewList(b.attributeSetInputType())},
	}
}

func (b *builder) productInputType() *graphql.InputObject {
	if b.productInput == nil {
		b.productInput = graphql.NewInputObject(graphql.InputObjectConfig{
			Name:   "ProductInput",
			Fields: b.productInputFields(true),
		})
	}
	return b.productInput
}

func (b *builder) productUpdateInputType() *graphql.InputObject {
	if b.productUpdateInput == nil {
		b.productUpdateInput = graphql.NewInputObject(graphql.InputObjectConfig{
			Name:   "ProductUpdateInput",
			Fields: b.productInputFields(false),
		})
	}
	return b.productUpdateInput
}

func (b *builder) orderItemInputType() *graphql.InputObject {
	if b.orderItemInput != nil {
		return b.orderItemInput
	}
	selected := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "SelectedAttributeInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":         &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"attribute_id": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
	})
	b.orderItemInput = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "OrderItemInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"product_id":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"quantity":            &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"selected_attributes": &graphql.InputObjectFieldConfig{Type: graphql.NewList(selected)},
		},
	})
	return b.orderItemInput
}

func inputArg(args map[string]interface{}) (map[string]interface{}, error) {
	m, ok := args["input"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: input must be an object", ErrValidation)
	}
	return m, nil
}

// mutate wraps a mutation resolver with its own span on top of the field instrumentation.
func (b *builder) mutate(field, entity, keyArg string, fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return b.resolve("Mutation", field, func(p graphql.ResolveParams) (interface{}, error) {
		key, _ := p.Args[keyArg].(string)
		ctx, span := b.obs.Tracer().StartMutation(p.Context, field, entity, key)
		defer span.End()
		p.Context = ctx
		v, err := fn(p)
		if err != nil {
			b.obs.Tracer().RecordError(span, err)
		}
		return v, err
	})
}

func (b *builder) mutation() *graphql.Object {
	m := func() resolvers.MutationResolver {
		return resolvers.NewMutationResolver(b.catalog, b.orders)
	}
	idArg := func() graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		}
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCategory": &graphql.Field{
				Type: b.category(),
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: b.mutate("createCategory", "Category", "", func(p graphql.ResolveParams) (interface{}, error) {
					name, err := stringArg(p.Args, "name")
					if err != nil {
						return nil, err
					}
					return nullable(m().CreateCategory(p.Context, name))
				}),
			},
			"deleteCategory": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: b.mutate("deleteCategory", "Category", "", func(p graphql.ResolveParams) (interface{}, error) {
					id, err := intArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					return value(m().DeleteCategory(p.Context, id))
				}),
			},
			"createProduct": &graphql.Field{
				Type: b.product(),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(b.productInputType())},
				},
				Resolve: b.mutate("createProduct", "Product", "", func(p graphql.ResolveParams) (interface{}, error) {
					raw, err := inputArg(p.Args)
					if err != nil {
						return nil, err
					}
					in, err := productInputArg(raw)
					if err != nil {
						return nil, err
					}
					return nullable(m().CreateProduct(p.Context, in))
				}),
			},
			"updateProduct": &graphql.Field{
				Type: b.product(),
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(b.productUpdateInputType())},
				},
				Resolve: b.mutate("updateProduct", "Product", "id", func(p graphql.ResolveParams) (interface{}, error) {
					id, err := stringArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					raw, err := inputArg(p.Args)
					if err != nil {
						return nil, err
					}
					patch, err := productPatchArg(raw)
					if err != nil {
						return nil, err
					}
					return nullable(m().UpdateProduct(p.Context, id, patch))
				}),
			},
			"deleteProduct": &graphql.Field{
				Type: graphql.Boolean,
				Args: idArg(),
				Resolve: b.mutate("deleteProduct", "Product", "id", func(p graphql.ResolveParams) (interface{}, error) {
					id, err := stringArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					return value(m().DeleteProduct(p.Context, id))
				}),
			},
			"createOrder": &graphql.Field{
				Type: b.order(),
				Args: graphql.FieldConfigArgument{
					"customer_name":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"customer_email": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"items": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(b.orderItemInputType()))),
					},
				},
				Resolve: b.mutate("createOrder", "Order", "", func(p graphql.ResolveParams) (interface{}, error) {
					in, err := orderInputArg(p.Args)
					if err != nil {
						return nil, err
					}
					return nullable(m().CreateOrder(p.Context, in))
				}),
			},
			"updateOrder": &graphql.Field{
				Type: b.order(),
				Args: graphql.FieldConfigArgument{
					"id":             &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"customer_name":  &graphql.ArgumentConfig{Type: graphql.String},
					"customer_email": &graphql.ArgumentConfig{Type: graphql.String},
					"status":         &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: b.mutate("updateOrder", "Order", "id", func(p graphql.ResolveParams) (interface{}, error) {
					id, err := stringArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					patch, err := orderPatchArg(p.Args)
					if err != nil {
						return nil, err
					}
					return nullable(m().UpdateOrder(p.Context, id, patch))
				}),
			},
			"deleteOrder": &graphql.Field{
				Type: graphql.Boolean,
				Args: idArg(),
				Resolve: b.mutate("deleteOrder", "Order", "id", func(p graphql.ResolveParams) (interface{}, error) {
					id, err := stringArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					return value(m().DeleteOrder(p.Context, id))
				}),
			},
		},
	})
}
