package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatusPending is the status every order is created with. Later values are free-form.
const OrderStatusPending = "pending"

// Order is the root of the order aggregate. Its id is an opaque random token.
type Order struct {
	ID            string    `json:"id" gorm:"column:id;type:varchar(64);primaryKey"`
	CustomerName  string    `json:"customer_name" gorm:"column:customer_name;type:varchar(255);not null"`
	CustomerEmail string    `json:"customer_email" gorm:"column:customer_email;type:varchar(255);not null"`
	Status        string    `json:"status" gorm:"column:status;type:varchar(64);not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at;not null"`
}

// TableName overrides the table name used by GORM.
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one line of an order. Price is a snapshot of the product's price
// at order creation; ProductID is a reference by value, not an ownership edge.
type OrderItem struct {
	ID        string          `json:"id" gorm:"column:id;type:varchar(64);primaryKey"`
	OrderID   string          `json:"order_id" gorm:"column:order_id;type:varchar(64);index;not null"`
	ProductID string          `json:"product_id" gorm:"column:product_id;type:varchar(64);not null"`
	Quantity  int             `json:"quantity" gorm:"column:quantity;not null"`
	Price     decimal.Decimal `json:"price" gorm:"column:price;type:decimal(10,2);not null"`
	// LineNo keeps lines in the order they were submitted; ids are random.
	LineNo int `json:"line_no" gorm:"column:line_no;not null;default:0"`
}

// TableName overrides the table name used by GORM.
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal returns price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// OrderItemAttribute records which AttributeItem was chosen for an order line.
// Name is the attribute-set label ("Size"), not the item value.
type OrderItemAttribute struct {
	ID          int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	OrderItemID string `json:"order_item_id" gorm:"column:order_item_id;type:varchar(64);index;not null"`
	Name        string `json:"name" gorm:"column:name;type:varchar(255);not null"`
	AttributeID int64  `json:"attribute_id" gorm:"column:attribute_id;not null"`
}

// TableName overrides the table name used by GORM.
func (OrderItemAttribute) TableName() string {
	return "order_item_attributes"
}

// SelectedAttribute is the read model of an OrderItemAttribute joined with the
// AttributeItem it points at. Value and DisplayValue are empty when the item
// has since been removed from the catalog.
type SelectedAttribute struct {
	Name         string `json:"name" gorm:"column:name"`
	AttributeID  int64  `json:"attribute_id" gorm:"column:attribute_id"`
	Value        string `json:"value" gorm:"column:value"`
	DisplayValue string `json:"display_value" gorm:"column:display_value"`
}

// All returns every persisted model in dependency order, for migrations.
func All() []interface{} {
	return []interface{}{
		&Category{},
		&Product{},
		&Price{},
		&GalleryImage{},
		&AttributeSet{},
		&AttributeItem{},
		&Order{},
		&OrderItem{},
		&OrderItemAttribute{},
	}
}
