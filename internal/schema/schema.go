// Package schema builds the GraphQL type graph of the storefront and binds
// every field to a resolver.
//
// Object types are constructed lazily and memoized on the builder, so each is
// created exactly once per schema even though Product and Category refer to
// each other. Child fields resolve from the identity of their parent only,
// one relation at a time.
package schema

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/nlstn/go-storefront/internal/observability"
	"github.com/nlstn/go-storefront/internal/resolvers"
)

// CatalogStore is everything the schema needs from the catalog repository.
type CatalogStore interface {
	resolvers.CatalogReader
	resolvers.CatalogWriter
}

// OrderStore is everything the schema needs from the order repository.
type OrderStore interface {
	resolvers.OrderReader
	resolvers.OrderWriter
}

// Config wires the schema to its stores.
type Config struct {
	Catalog       CatalogStore
	Orders        OrderStore
	Observability *observability.Config
	Logger        *slog.Logger
}

type builder struct {
	catalog CatalogStore
	orders  OrderStore
	obs     *observability.Config
	logger  *slog.Logger

	categoryType          *graphql.Object
	productType           *graphql.Object
	attributeSetType      *graphql.Object
	attributeItemType     *graphql.Object
	orderType             *graphql.Object
	orderItemType         *graphql.Object
	selectedAttributeType *graphql.Object

	productInput       *graphql.InputObject
	productUpdateInput *graphql.InputObject
	attributeSetInput  *graphql.InputObject
	orderItemInput     *graphql.InputObject
}

// New builds the executable schema.
func New(cfg Config) (graphql.Schema, error) {
	if cfg.Catalog == nil || cfg.Orders == nil {
		return graphql.Schema{}, fmt.Errorf("schema: catalog and order stores are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	b := &builder{
		catalog: cfg.Catalog,
		orders:  cfg.Orders,
		obs:     cfg.Observability,
		logger:  logger,
	}

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    b.query(),
		Mutation: b.mutation(),
	})
}

// resolve instruments fn with a per-field span (when enabled) and a duration
// metric, and converts errors to their client representation.
func (b *builder) resolve(parentType, field string, fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if p.Context == nil {
			p.Context = context.Background()
		}
		start := time.Now()
		if b.obs.FieldTracingEnabled() {
			ctx, span := b.obs.Tracer().StartResolve(p.Context, parentType, field)
			defer span.End()
			p.Context = ctx
			v, err := fn(p)
			if err != nil {
				b.obs.Tracer().RecordError(span, err)
			} else if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice {
				span.SetAttributes(observability.ResultCountAttr(int64(rv.Len())))
			}
			return b.finish(p.Context, parentType, field, start, v, err)
		}
		v, err := fn(p)
		return b.finish(p.Context, parentType, field, start, v, err)
	}
}

func (b *builder) finish(ctx context.Context, parentType, field string, start time.Time, v interface{}, err error) (interface{}, error) {
	b.obs.Metrics().RecordResolve(ctx, parentType, field, time.Since(start))
	if err == nil {
		return v, nil
	}
	gqlErr := toGraphQLError(err)
	level := slog.LevelDebug
	if gqlErr.Code == CodePersistence || gqlErr.Code == CodeInternal {
		level = slog.LevelError
	}
	observability.LoggerWithTrace(ctx, b.logger).Log(ctx, level, "field resolution failed",
		slog.String("field", parentType+"."+field),
		slog.String("code", gqlErr.Code),
		slog.String(observability.LogFieldError, err.Error()),
	)
	return nil, gqlErr
}

func source[T any](p graphql.ResolveParams) (*T, error) {
	switch v := p.Source.(type) {
	case *T:
		if v != nil {
			return v, nil
		}
	case T:
		return &v, nil
	}
	return nil, fmt.Errorf("schema: unexpected source %T for %s", p.Source, p.Info.FieldName)
}

// nullable hides typed nil pointers from graphql-go.
func nullable[T any](v *T, err error) (interface{}, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}

func value[T any](v T, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (b *builder) query() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(b.product()),
				Resolve: b.resolve("Query", "products", func(p graphql.ResolveParams) (interface{}, error) {
					return value(resolvers.NewProductResolver(b.catalog).Products(p.Context))
				}),
			},
			"product": &graphql.Field{
				Type: b.product(),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: b.resolve("Query", "product", func(p graphql.ResolveParams) (interface{}, error) {
					id, err := stringArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					return nullable(resolvers.NewProductResolver(b.catalog).ProductByID(p.Context, id))
				}),
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(b.category()),
				Resolve: b.resolve("Query", "categories", func(p graphql.ResolveParams) (interface{}, error) {
					return value(resolvers.NewCategoryResolver(b.catalog).Categories(p.Context))
				}),
			},
			"category": &graphql.Field{
				Type: b.category(),
				Args: graphql.FieldConfigArgument{
					"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: b.resolve("Query", "category", func(p graphql.ResolveParams) (interface{}, error) {
					name, err := stringArg(p.Args, "name")
					if err != nil {
						return nil, err
					}
					return nullable(resolvers.NewCategoryResolver(b.catalog).CategoryByName(p.Context, name))
				}),
			},
			"orders": &graphql.Field{
				Type: graphql.NewList(b.order()),
				Resolve: b.resolve("Query", "orders", func(p graphql.ResolveParams) (interface{}, error) {
					return value(resolvers.NewOrderResolver(b.orders).OrdersAll(p.Context))
				}),
			},
			"order": &graphql.Field{
				Type: b.order(),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: b.resolve("Query", "order", func(p graphql.ResolveParams) (interface{}, error) {
					id, err := stringArg(p.Args, "id")
					if err != nil {
						return nil, err
					}
					return nullable(resolvers.NewOrderResolver(b.orders).OrderByID(p.Context, id))
				}),
			},
		},
	})
}
