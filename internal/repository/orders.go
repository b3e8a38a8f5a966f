package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nlstn/go-storefront/internal/models"
)

// PriceLookup reads the current price of a product. CatalogRepository
// satisfies it; reads join the transaction bound to ctx.
type PriceLookup interface {
	PriceForProduct(ctx context.Context, productID string) (decimal.Decimal, error)
}

// SelectedAttributeInput picks one AttributeItem for an order line.
type SelectedAttributeInput struct {
	Name        string
	AttributeID int64
}

// OrderItemInput is one requested order line.
type OrderItemInput struct {
	ProductID          string
	Quantity           int
	SelectedAttributes []SelectedAttributeInput
}

// OrderInput carries everything needed to place an order.
type OrderInput struct {
	CustomerName  string
	CustomerEmail string
	Items         []OrderItemInput
}

// OrderPatch is a sparse order update: nil fields are left untouched.
type OrderPatch struct {
	CustomerName  *string
	CustomerEmail *string
	Status        *string
}

// OrderRepository reads and writes the order aggregate.
type OrderRepository struct {
	db     *gorm.DB
	prices PriceLookup
}

// NewOrderRepository creates an order repository. prices supplies the
// snapshot price of each line at creation time.
func NewOrderRepository(db *gorm.DB, prices PriceLookup) *OrderRepository {
	return &OrderRepository{db: db, prices: prices}
}

// Orders returns every order, oldest first.
func (r *OrderRepository) Orders(ctx context.Context) ([]*models.Order, error) {
	var list []*models.Order
	if err := conn(ctx, r.db).Order("created_at").Order("id").Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

// OrderByID returns ErrNotFound when no order has the id.
func (r *OrderRepository) OrderByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := conn(ctx, r.db).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, translateError(err)
	}
	return &o, nil
}

// OrderItems returns the lines of an order in submission order.
func (r *OrderRepository) OrderItems(ctx context.Context, orderID string) ([]*models.OrderItem, error) {
	var list []*models.OrderItem
	if err := conn(ctx, r.db).Where("order_id = ?", orderID).Order("line_no").Find(&list).Error; err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

// SelectedAttributes returns the attribute choices of an order line joined
// with the catalog item they point at. Choices whose item no longer exists
// are still returned, with empty value and display value.
func (r *OrderRepository) SelectedAttributes(ctx context.Context, orderItemID string) ([]*models.SelectedAttribute, error) {
	var list []*models.SelectedAttribute
	err := conn(ctx, r.db).
		Table("order_item_attributes AS oia").
		Select("oia.name AS name, oia.attribute_id AS attribute_id, " +
			"COALESCE(ai.value, '') AS value, COALESCE(ai.display_value, '') AS display_value").
		Joins("LEFT JOIN attribute_items AS ai ON ai.id = oia.attribute_id").
		Where("oia.order_item_id = ?", orderItemID).
		Order("oia.id").
		Scan(&list).Error
	if err != nil {
		return nil, translateError(err)
	}
	return list, nil
}

// OrderTotal sums snapshot price times quantity over the lines of an order.
func (r *OrderRepository) OrderTotal(ctx context.Context, orderID string) (decimal.Decimal, error) {
	items, err := r.OrderItems(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total, nil
}

// CreateOrder places an order in one transaction. Each line's price is the
// product's current price, read inside the same transaction; a product with
// no price row snapshots zero. The order is re-read after commit.
func (r *OrderRepository) CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error) {
	orderID := uuid.NewString()

	err := runInTransaction(ctx, r.db, func(ctx context.Context, tx *gorm.DB) error {
		order := models.Order{
			ID:            orderID,
			CustomerName:  in.CustomerName,
			CustomerEmail: in.CustomerEmail,
			Status:        models.OrderStatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i, line := range in.Items {
			price, err := r.prices.PriceForProduct(ctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("read price of %s: %w", line.ProductID, err)
			}
			item := models.OrderItem{
				ID:        uuid.NewString(),
				OrderID:   orderID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     price,
				LineNo:    i + 1,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("insert order item %d: %w", i+1, err)
			}
			if len(line.SelectedAttributes) == 0 {
				continue
			}
			selected := make([]models.OrderItemAttribute, len(line.SelectedAttributes))
			for j, sa := range line.SelectedAttributes {
				selected[j] = models.OrderItemAttribute{
					OrderItemID: item.ID,
					Name:        sa.Name,
					AttributeID: sa.AttributeID,
				}
			}
			if err := tx.Create(&selected).Error; err != nil {
				return fmt.Errorf("insert attributes of order item %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.OrderByID(ctx, orderID)
}

// UpdateOrder applies patch and returns the order re-read after commit.
func (r *OrderRepository) UpdateOrder(ctx context.Context, id string, patch OrderPatch) (*models.Order, error) {
	err := runInTransaction(ctx, r.db, func(ctx context.Context, tx *gorm.DB) error {
		var existing models.Order
		if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if patch.CustomerName != nil {
			updates["customer_name"] = *patch.CustomerName
		}
		if patch.CustomerEmail != nil {
			updates["customer_email"] = *patch.CustomerEmail
		}
		if patch.Status != nil {
			updates["status"] = *patch.Status
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.OrderByID(ctx, id)
}

// DeleteOrder removes the order with its lines and their attribute choices
// in one transaction. It reports whether an order row was deleted.
func (r *OrderRepository) DeleteOrder(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := runInTransaction(ctx, r.db, func(ctx context.Context, tx *gorm.DB) error {
		var itemIDs []string
		if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", id).Pluck("id", &itemIDs).Error; err != nil {
			return fmt.Errorf("list order items: %w", err)
		}
		if len(itemIDs) > 0 {
			if err := tx.Where("order_item_id IN ?", itemIDs).Delete(&models.OrderItemAttribute{}).Error; err != nil {
				return fmt.Errorf("delete order item attributes: %w", err)
			}
			if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
				return fmt.Errorf("delete order items: %w", err)
			}
		}
		res := tx.Where("id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return fmt.Errorf("delete order: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}
