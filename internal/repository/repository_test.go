package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errInjected = errors.New("injected failure")

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(Options{AutoMigrate: true, LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db       *gorm.DB
	catalog  *CatalogRepository
	orders   *OrderRepository
	all      int64
	clothes  int64
	tech     int64
	tee      string
	phone    string
	sizeItem int64
}

// newFixture seeds three categories ("all" takes the wildcard id) and two products.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := setupTestDB(t)
	catalog := NewCatalogRepository(db)
	f := &fixture{db: db, catalog: catalog, orders: NewOrderRepository(db, catalog)}

	for _, c := range []struct {
		name string
		dst  *int64
	}{{"all", &f.all}, {"clothes", &f.clothes}, {"tech", &f.tech}} {
		cat, err := catalog.CreateCategory(ctx, c.name)
		require.NoError(t, err)
		*c.dst = cat.ID
	}
	require.Equal(t, WildcardCategoryID, f.all)

	tee, err := catalog.CreateProduct(ctx, ProductInput{
		Name:       "Tee",
		Brand:      "Acme",
		CategoryID: &f.clothes,
		InStock:    true,
		Price:      decimal.RequireFromString("19.99"),
		Gallery:    []string{"https://img/tee-front.jpg", "https://img/tee-back.jpg"},
		Attributes: []AttributeSetInput{{
			Name: "Size",
			Type: "text",
			Items: []AttributeItemInput{
				{Value: "S", DisplayValue: "Small"},
				{Value: "M", DisplayValue: "Medium"},
			},
		}},
	})
	require.NoError(t, err)
	f.tee = tee.ID

	phone, err := catalog.CreateProduct(ctx, ProductInput{
		Name:         "Phone",
		Brand:        "Fruit",
		CategoryName: "tech",
		Price:        decimal.RequireFromString("499.00"),
		Attributes: []AttributeSetInput{
			{Name: "Color", Type: "swatch", Items: []AttributeItemInput{{Value: "#000000", DisplayValue: "Black"}}},
			{Name: "Capacity", Type: "text", Items: []AttributeItemInput{{Value: "128GB", DisplayValue: "128GB"}}},
		},
	})
	require.NoError(t, err)
	f.phone = phone.ID

	sets, err := catalog.AttributesForProduct(ctx, f.tee, "")
	require.NoError(t, err)
	require.Len(t, sets, 1)
	items, err := catalog.AttributeItemsForAttribute(ctx, sets[0].ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	f.sizeItem = items[1].ID

	return f
}

var snapshotTables = []string{
	"categories", "products", "prices", "gallery", "attributes", "attribute_items",
	"orders", "order_items", "order_item_attributes",
}

// snapshot dumps every table so a failed write can be compared with the state before it.
func snapshot(t *testing.T, db *gorm.DB) map[string][]map[string]interface{} {
	t.Helper()
	out := make(map[string][]map[string]interface{}, len(snapshotTables))
	for _, table := range snapshotTables {
		var rows []map[string]interface{}
		require.NoError(t, db.Table(table).Order("id").Find(&rows).Error)
		out[table] = rows
	}
	return out
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}

// failCreatesOn makes every INSERT into table fail for the rest of the test.
func failCreatesOn(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	name := "test:fail_create_" + table
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errInjected)
		}
	}))
}

// failDeletesOn makes every DELETE from table fail for the rest of the test.
func failDeletesOn(t *testing.T, db *gorm.DB, table string) {
	t.Helper()
	name := "test:fail_delete_" + table
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(errInjected)
		}
	}))
}
