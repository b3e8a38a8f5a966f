package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nlstn/go-storefront/internal/models"
)

func TestCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	list, err := f.catalog.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "all", list[0].Name)
	assert.Equal(t, models.TypenameCategory, list[0].Typename)

	byName, err := f.catalog.CategoryByName(ctx, "tech")
	require.NoError(t, err)
	assert.Equal(t, f.tech, byName.ID)

	_, err = f.catalog.CategoryByID(ctx, 999)
	assert.True(t, IsNotFound(err))
	_, err = f.catalog.CategoryByName(ctx, "garden")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.CreateCategory(context.Background(), "clothes")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestProductsByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clothes, err := f.catalog.ProductsByCategory(ctx, f.clothes)
	require.NoError(t, err)
	require.Len(t, clothes, 1)
	assert.Equal(t, "Tee", clothes[0].Name)

	all, err := f.catalog.ProductsByCategory(ctx, WildcardCategoryID)
	require.NoError(t, err)
	assert.Len(t, all, 2, "wildcard category matches every product")

	none, err := f.catalog.ProductsByCategory(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProductReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.catalog.ProductByID(ctx, f.tee)
	require.NoError(t, err)
	assert.Equal(t, "Tee", p.Name)
	assert.True(t, p.InStock)
	assert.Equal(t, f.clothes, p.CategoryID)
	assert.Equal(t, models.TypenameProduct, p.Typename)

	phone, err := f.catalog.ProductByID(ctx, f.phone)
	require.NoError(t, err)
	assert.Equal(t, f.tech, phone.CategoryID, "category resolved by name")

	price, err := f.catalog.PriceForProduct(ctx, f.tee)
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("19.99")), "got %s", price)

	gallery, err := f.catalog.GalleryForProduct(ctx, f.tee)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/tee-front.jpg", "https://img/tee-back.jpg"}, gallery)

	empty, err := f.catalog.GalleryForProduct(ctx, f.phone)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = f.catalog.ProductByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPriceForProductWithoutPriceRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Where("product_id = ?", f.phone).Delete(&models.Price{}).Error)

	price, err := f.catalog.PriceForProduct(ctx, f.phone)
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

func TestAttributesForProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sets, err := f.catalog.AttributesForProduct(ctx, f.phone, "")
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, "Color", sets[0].Name)
	assert.Equal(t, "Capacity", sets[1].Name)

	swatches, err := f.catalog.AttributesForProduct(ctx, f.phone, "swatch")
	require.NoError(t, err)
	require.Len(t, swatches, 1)
	assert.Equal(t, "Color", swatches[0].Name)

	items, err := f.catalog.AttributeItemsForAttribute(ctx, swatches[0].ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "#000000", items[0].Value)
	assert.Equal(t, "Black", items[0].DisplayValue)
	assert.Equal(t, models.TypenameAttributeItem, items[0].Typename)
}

func TestCreateProductUnknownCategoryName(t *testing.T) {
	f := newFixture(t)
	before := snapshot(t, f.db)

	_, err := f.catalog.CreateProduct(context.Background(), ProductInput{
		Name:         "Rake",
		CategoryName: "garden",
		Price:        decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, before, snapshot(t, f.db))
}

func TestCreateProductAtomicity(t *testing.T) {
	for _, table := range []string{"products", "prices", "gallery", "attributes", "attribute_items"} {
		t.Run(table, func(t *testing.T) {
			f := newFixture(t)
			before := snapshot(t, f.db)
			failCreatesOn(t, f.db, table)

			_, err := f.catalog.CreateProduct(context.Background(), ProductInput{
				Name:       "Hoodie",
				CategoryID: &f.clothes,
				Price:      decimal.RequireFromString("49.50"),
				Gallery:    []string{"https://img/hoodie.jpg"},
				Attributes: []AttributeSetInput{{
					Name:  "Size",
					Type:  "text",
					Items: []AttributeItemInput{{Value: "L", DisplayValue: "Large"}},
				}},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, errInjected)
			assert.ErrorIs(t, err, ErrPersistence)
			assert.Equal(t, before, snapshot(t, f.db))
		})
	}
}

func TestUpdateProductAtomicity(t *testing.T) {
	tests := []struct {
		name   string
		table  string
		inject func(*testing.T, *gorm.DB, string)
	}{
		{"delete attribute items", "attribute_items", failDeletesOn},
		{"delete attributes", "attributes", failDeletesOn},
		{"delete gallery", "gallery", failDeletesOn},
		{"insert attributes", "attributes", failCreatesOn},
		{"insert attribute items", "attribute_items", failCreatesOn},
		{"insert gallery", "gallery", failCreatesOn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			before := snapshot(t, f.db)
			tt.inject(t, f.db, tt.table)

			name := "Tee v2"
			price := decimal.RequireFromString("24.99")
			_, err := f.catalog.UpdateProduct(context.Background(), f.tee, ProductPatch{
				Name:    &name,
				Price:   &price,
				Gallery: []string{"https://img/tee-new.jpg"},
				Attributes: []AttributeSetInput{{
					Name:  "Color",
					Type:  "swatch",
					Items: []AttributeItemInput{{Value: "#000000", DisplayValue: "Black"}},
				}},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, errInjected)
			assert.Equal(t, before, snapshot(t, f.db))
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	name := "Tee v2"
	price := decimal.RequireFromString("24.99")
	inStock := false
	updated, err := f.catalog.UpdateProduct(ctx, f.tee, ProductPatch{
		Name:    &name,
		InStock: &inStock,
		Price:   &price,
		Attributes: []AttributeSetInput{{
			Name:  "Color",
			Type:  "swatch",
			Items: []AttributeItemInput{{Value: "#FFFFFF", DisplayValue: "White"}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Tee v2", updated.Name)
	assert.False(t, updated.InStock)
	assert.Equal(t, "Acme", updated.Brand, "untouched fields keep their value")

	got, err := f.catalog.PriceForProduct(ctx, f.tee)
	require.NoError(t, err)
	assert.True(t, got.Equal(price), "got %s", got)
	assert.EqualValues(t, 2, countRows(t, f.db, "prices"), "price updated in place")

	sets, err := f.catalog.AttributesForProduct(ctx, f.tee, "")
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "Color", sets[0].Name)
	assert.EqualValues(t, 0, countItemsOf(t, f, f.sizeItem), "old attribute items removed")

	gallery, err := f.catalog.GalleryForProduct(ctx, f.tee)
	require.NoError(t, err)
	assert.Len(t, gallery, 2, "nil gallery keeps the existing images")
}

func TestUpdateProductReplacesGalleryAndClearsAttributes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.UpdateProduct(ctx, f.tee, ProductPatch{Gallery: []string{"https://img/new.jpg"}})
	require.NoError(t, err)

	gallery, err := f.catalog.GalleryForProduct(ctx, f.tee)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/new.jpg"}, gallery)

	sets, err := f.catalog.AttributesForProduct(ctx, f.tee, "")
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestUpdateProductInsertsMissingPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Where("product_id = ?", f.phone).Delete(&models.Price{}).Error)

	price := decimal.RequireFromString("399.00")
	_, err := f.catalog.UpdateProduct(ctx, f.phone, ProductPatch{Price: &price})
	require.NoError(t, err)

	got, err := f.catalog.PriceForProduct(ctx, f.phone)
	require.NoError(t, err)
	assert.True(t, got.Equal(price))
}

func TestUpdateProductMovesCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	name := "clothes"
	updated, err := f.catalog.UpdateProduct(ctx, f.phone, ProductPatch{CategoryName: &name})
	require.NoError(t, err)
	assert.Equal(t, f.clothes, updated.CategoryID)

	missing := "garden"
	_, err = f.catalog.UpdateProduct(ctx, f.phone, ProductPatch{CategoryName: &missing})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateProductNotFound(t *testing.T) {
	f := newFixture(t)
	before := snapshot(t, f.db)

	name := "ghost"
	_, err := f.catalog.UpdateProduct(context.Background(), "missing", ProductPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, snapshot(t, f.db))
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	deleted, err := f.catalog.DeleteProduct(ctx, f.tee)
	require.NoError(t, err)
	assert.True(t, deleted)

	var remaining int64
	require.NoError(t, f.db.Model(&models.Price{}).Where("product_id = ?", f.tee).Count(&remaining).Error)
	assert.Zero(t, remaining)
	require.NoError(t, f.db.Model(&models.GalleryImage{}).Where("product_id = ?", f.tee).Count(&remaining).Error)
	assert.Zero(t, remaining)
	require.NoError(t, f.db.Model(&models.AttributeSet{}).Where("product_id = ?", f.tee).Count(&remaining).Error)
	assert.Zero(t, remaining)
	assert.EqualValues(t, 0, countItemsOf(t, f, f.sizeItem))
	assert.EqualValues(t, 2, countRows(t, f.db, "attribute_items"), "other product's items survive")

	deleted, err = f.catalog.DeleteProduct(ctx, f.tee)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteProductAtomicity(t *testing.T) {
	for _, table := range []string{"attribute_items", "attributes", "gallery", "prices", "products"} {
		t.Run(table, func(t *testing.T) {
			f := newFixture(t)
			before := snapshot(t, f.db)
			failDeletesOn(t, f.db, table)

			_, err := f.catalog.DeleteProduct(context.Background(), f.tee)
			assert.ErrorIs(t, err, errInjected)
			assert.Equal(t, before, snapshot(t, f.db))
		})
	}
}

func TestDeleteCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	deleted, err := f.catalog.DeleteCategory(ctx, f.tech)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = f.catalog.ProductByID(ctx, f.phone)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 1, countRows(t, f.db, "products"))
	assert.EqualValues(t, 1, countRows(t, f.db, "prices"))
	assert.EqualValues(t, 1, countRows(t, f.db, "attributes"))
	assert.EqualValues(t, 2, countRows(t, f.db, "attribute_items"))

	deleted, err = f.catalog.DeleteCategory(ctx, 999)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteCategoryAtomicity(t *testing.T) {
	f := newFixture(t)
	before := snapshot(t, f.db)
	failDeletesOn(t, f.db, "categories")

	_, err := f.catalog.DeleteCategory(context.Background(), f.clothes)
	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, before, snapshot(t, f.db))
}

func countItemsOf(t *testing.T, f *fixture, itemID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.AttributeItem{}).Where("id = ?", itemID).Count(&n).Error)
	return n
}
