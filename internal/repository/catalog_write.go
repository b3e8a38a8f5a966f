package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nlstn/go-storefront/internal/models"
)

// AttributeItemInput is one selectable value of a new attribute set.
type AttributeItemInput struct {
	Value        string
	DisplayValue string
}

// AttributeSetInput is a new attribute set with its items.
type AttributeSetInput struct {
	Name  string
	Type  string
	Items []AttributeItemInput
}

// ProductInput carries everything needed to create a product.
// The category is taken from CategoryID, or looked up by CategoryName when only that is set.
type ProductInput struct {
	Name         string
	Description  string
	Brand        string
	CategoryID   *int64
	CategoryName string
	InStock      bool
	Price        decimal.Decimal
	Gallery      []string
	Attributes   []AttributeSetInput
}

// ProductPatch is a sparse product update: nil fields are left untouched.
//
// Attributes are always replaced: the existing sets are deleted and the ones
// listed here inserted, so a patch without attributes leaves the product with
// none. Gallery is replaced only when non-nil.
type ProductPatch struct {
	Name         *string
	Description  *string
	Brand        *string
	CategoryID   *int64
	CategoryName *string
	InStock      *bool
	Price        *decimal.Decimal
	Gallery      []string
	Attributes   []AttributeSetInput
}

// CreateCategory inserts a category and returns it as stored.
func (r *CatalogRepository) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	c := models.Category{Name: name}
	if err := conn(ctx, r.db).Create(&c).Error; err != nil {
		return nil, translateError(fmt.Errorf("insert category: %w", err))
	}
	return r.CategoryByID(ctx, c.ID)
}

// CreateProduct inserts a product with its price, gallery and attributes in
// one transaction and returns the product re-read after commit.
func (r *CatalogRepository) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	productID := uuid.NewString()

	err := runInTransaction(ctx, r.db, func(ctx context.Context, tx *gorm.DB) error {
		categoryID, err := r.resolveCategoryID(ctx, in.CategoryID, in.CategoryName)
		if err != nil {
			return err
		}

		product := models.Product{
			ID:          productID,
			Name:        in.Name,
			Description: in.Description,
			Brand:       in.Brand,
			InStock:     in.InStock,
			CategoryID:  categoryID,
		}
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("insert product: %w", err)
		}

		price := models.Price{ProductID: productID, Amount: in.Price, Currency: models.DefaultCurrency}
		if err := tx.Create(&price).Error; err != nil {
			return fmt.Errorf("insert price: %w", err)
		}

		if err := insertGallery(tx, productID, in.Gallery); err != nil {
			return err
		}
		return insertAttributes(tx, productID, in.Attributes)
	})
	if err != nil {
		return nil, err
	}
	return r.ProductByID(ctx, productID)
}

// UpdateProduct applies patch to the product in one transaction and returns
// the product re-read after commit. See ProductPatch for replacement rules.
func (r *CatalogRepository) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (*models.Product, error) {
	err := runInTransaction(ctx, r.db, func(ctx context.Context, tx *gorm.DB) error {
		var existing models.Product
		if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
			return err
		}

		if err := deleteAttributes(tx, []string{id}); err != nil {
			return err
		}
		if err := insertAttributes(tx, id, patch.Attributes); err != nil {
			return err
		}

		if patch.Price != nil {
			if err := upsertPrice(tx, id, *patch.Price); err != nil {
				return err
			}
		}

		if patch.Gallery != nil {
			if err := tx.Where("product_id = ?", id).Delete(&models.GalleryImage{}).Error; err != nil {
				return fmt.Errorf("delete gallery: %w", err)
			}
			if err := insertGallery(tx, id, patch.Gallery); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{}
		if patch.Name != nil {
			updates["name"] = *patch.Name
		}
		if patch.Description != nil {
			updates["description"] = *patch.Description
		}
		if patch.Brand != nil {
			updates["brand"] = *patch.Brand
		}
		if patch.InStock != nil {
			updates["in_stock"] = *patch.InStock
		}
		if patch.CategoryID != nil || patch.CategoryName != nil {
			name := ""
			if patch.CategoryName != nil {
				name = *patch.CategoryName
			}
			categoryID, err := r.resolveCategoryID(ctx, patch.CategoryID, name)
			if err != nil {
				return err
			}
			updates["category_id"] = categoryID
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.ProductByID(ctx, id)
}

// DeleteProduct removes the product and everything it owns in one
// transaction. Orders that reference it are left untouched. It reports
// whether a product row was deleted.
func (r *CatalogRepository) DeleteProduct(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := runInTransaction(ctx, r.db, func(ctx context.Context, tx *gorm.DB) error {
		n, err := deleteProducts(tx, []string{id})
		deleted = n > 0
		return err
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// DeleteCategory removes every product of the category, with everything
// they own, and then the category itself, in one transaction.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := runInTransaction(ctx, r.db, func(ctx context.Context, tx *gorm.DB) error {
		var productIDs []string
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Pluck("id", &productIDs).Error; err != nil {
			return fmt.Errorf("list category products: %w", err)
		}
		if _, err := deleteProducts(tx, productIDs); err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Category{})
		if res.Error != nil {
			return fmt.Errorf("delete category: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (r *CatalogRepository) resolveCategoryID(ctx context.Context, id *int64, name string) (int64, error) {
	if id != nil {
		return *id, nil
	}
	if name == "" {
		return 0, nil
	}
	c, err := r.CategoryByName(ctx, name)
	if IsNotFound(err) {
		return 0, fmt.Errorf("%w: category %q does not exist", ErrInvalidInput, name)
	}
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

func upsertPrice(tx *gorm.DB, productID string, amount decimal.Decimal) error {
	res := tx.Model(&models.Price{}).Where("product_id = ?", productID).Update("amount", amount)
	if res.Error != nil {
		return fmt.Errorf("update price: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	price := models.Price{ProductID: productID, Amount: amount, Currency: models.DefaultCurrency}
	if err := tx.Create(&price).Error; err != nil {
		return fmt.Errorf("insert price: %w", err)
	}
	return nil
}

func insertGallery(tx *gorm.DB, productID string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	images := make([]models.GalleryImage, len(urls))
	for i, url := range urls {
		images[i] = models.GalleryImage{ProductID: productID, URL: url}
	}
	if err := tx.Create(&images).Error; err != nil {
		return fmt.Errorf("insert gallery: %w", err)
	}
	return nil
}

func insertAttributes(tx *gorm.DB, productID string, sets []AttributeSetInput) error {
	for _, in := range sets {
		set := models.AttributeSet{Name: in.Name, Type: in.Type, ProductID: productID}
		if err := tx.Create(&set).Error; err != nil {
			return fmt.Errorf("insert attribute %q: %w", in.Name, err)
		}
		if len(in.Items) == 0 {
			continue
		}
		items := make([]models.AttributeItem, len(in.Items))
		for i, item := range in.Items {
			items[i] = models.AttributeItem{
				AttributeID:  set.ID,
				Value:        item.Value,
				DisplayValue: item.DisplayValue,
			}
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("insert items of attribute %q: %w", in.Name, err)
		}
	}
	return nil
}

// deleteAttributes removes attribute items, then attribute sets, of the products.
func deleteAttributes(tx *gorm.DB, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	var attributeIDs []int64
	if err := tx.Model(&models.AttributeSet{}).Where("product_id IN ?", productIDs).Pluck("id", &attributeIDs).Error; err != nil {
		return fmt.Errorf("list attributes: %w", err)
	}
	if len(attributeIDs) > 0 {
		if err := tx.Where("attribute_id IN ?", attributeIDs).Delete(&models.AttributeItem{}).Error; err != nil {
			return fmt.Errorf("delete attribute items: %w", err)
		}
	}
	if err := tx.Where("product_id IN ?", productIDs).Delete(&models.AttributeSet{}).Error; err != nil {
		return fmt.Errorf("delete attributes: %w", err)
	}
	return nil
}

// deleteProducts removes, in dependency order, attribute items, attributes,
// gallery, prices and finally the product rows. It returns the number of
// product rows deleted.
func deleteProducts(tx *gorm.DB, productIDs []string) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	if err := deleteAttributes(tx, productIDs); err != nil {
		return 0, err
	}
	if err := tx.Where("product_id IN ?", productIDs).Delete(&models.GalleryImage{}).Error; err != nil {
		return 0, fmt.Errorf("delete gallery: %w", err)
	}
	if err := tx.Where("product_id IN ?", productIDs).Delete(&models.Price{}).Error; err != nil {
		return 0, fmt.Errorf("delete prices: %w", err)
	}
	res := tx.Where("id IN ?", productIDs).Delete(&models.Product{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete products: %w", res.Error)
	}
	return res.RowsAffected, nil
}
