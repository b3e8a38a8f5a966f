// Package models holds the persisted record types of the storefront.
//
// Every struct maps its columns explicitly so that a drift between the Go shape
// and the table layout is caught at compile time rather than at runtime. No
// association fields are declared: relations are plain id columns and the
// repositories maintain referential integrity themselves.
package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Type labels persisted in the __typename column of each catalog table.
const (
	TypenameCategory      = "Category"
	TypenameProduct       = "Product"
	TypenamePrice         = "Price"
	TypenameGalleryImage  = "GalleryImage"
	TypenameAttributeSet  = "AttributeSet"
	TypenameAttributeItem = "AttributeItem"
)

// DefaultCurrency is the only currency prices are stored in.
const DefaultCurrency = "USD"

// Category groups products.
type Category struct {
	ID       int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name     string `json:"name" gorm:"column:name;type:varchar(255);not null;uniqueIndex"`
	Typename string `json:"-" gorm:"column:__typename;type:varchar(32)"`
}

// TableName overrides the table name used by GORM.
func (Category) TableName() string {
	return "categories"
}

// BeforeCreate stamps the entity kind label.
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	c.Typename = TypenameCategory
	return nil
}

// Product is the root of the catalog aggregate. Its id is a random UUID string.
type Product struct {
	ID          string `json:"id" gorm:"column:id;type:varchar(64);primaryKey"`
	Name        string `json:"name" gorm:"column:name;type:varchar(255);not null"`
	Description string `json:"description" gorm:"column:description;type:text"`
	Brand       string `json:"brand" gorm:"column:brand;type:varchar(255)"`
	InStock     bool   `json:"in_stock" gorm:"column:in_stock;not null;default:false"`
	CategoryID  int64  `json:"category_id" gorm:"column:category_id;index"`
	Typename    string `json:"-" gorm:"column:__typename;type:varchar(32)"`
}

// TableName overrides the table name used by GORM.
func (Product) TableName() string {
	return "products"
}

// BeforeCreate stamps the entity kind label.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	p.Typename = TypenameProduct
	return nil
}

// Price is the current price of a product. Only the first row per product is read.
type Price struct {
	ID        int64           `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Amount    decimal.Decimal `json:"amount" gorm:"column:amount;type:decimal(10,2);not null"`
	Currency  string          `json:"currency" gorm:"column:currency;type:varchar(8);not null"`
	ProductID string          `json:"product_id" gorm:"column:product_id;type:varchar(64);index;not null"`
	Typename  string          `json:"-" gorm:"column:__typename;type:varchar(32)"`
}

// TableName overrides the table name used by GORM.
func (Price) TableName() string {
	return "prices"
}

// BeforeCreate stamps the entity kind label and defaults the currency.
func (p *Price) BeforeCreate(tx *gorm.DB) error {
	p.Typename = TypenamePrice
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	return nil
}

// GalleryImage is one image URL of a product. Rows are read in insertion order.
type GalleryImage struct {
	ID        int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	ProductID string `json:"product_id" gorm:"column:product_id;type:varchar(64);index;not null"`
	URL       string `json:"url" gorm:"column:url;type:text;not null"`
	Typename  string `json:"-" gorm:"column:__typename;type:varchar(32)"`
}

// TableName overrides the table name used by GORM.
func (GalleryImage) TableName() string {
	return "gallery"
}

// BeforeCreate stamps the entity kind label.
func (g *GalleryImage) BeforeCreate(tx *gorm.DB) error {
	g.Typename = TypenameGalleryImage
	return nil
}

// AttributeSet is a named, typed group of selectable items ("Size", "Color").
// Type is a free-form label ("text", "swatch") interpreted by clients.
type AttributeSet struct {
	ID        int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Name      string `json:"name" gorm:"column:name;type:varchar(255);not null"`
	Type      string `json:"type" gorm:"column:type;type:varchar(64)"`
	ProductID string `json:"product_id" gorm:"column:product_id;type:varchar(64);index;not null"`
	Typename  string `json:"-" gorm:"column:__typename;type:varchar(32)"`
}

// TableName overrides the table name used by GORM.
func (AttributeSet) TableName() string {
	return "attributes"
}

// BeforeCreate stamps the entity kind label.
func (a *AttributeSet) BeforeCreate(tx *gorm.DB) error {
	a.Typename = TypenameAttributeSet
	return nil
}

// AttributeItem is one selectable value of an AttributeSet.
type AttributeItem struct {
	ID           int64  `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	AttributeID  int64  `json:"attribute_id" gorm:"column:attribute_id;index;not null"`
	Value        string `json:"value" gorm:"column:value;type:varchar(255);not null"`
	DisplayValue string `json:"displayValue" gorm:"column:display_value;type:varchar(255)"`
	Typename     string `json:"-" gorm:"column:__typename;type:varchar(32)"`
}

// TableName overrides the table name used by GORM.
func (AttributeItem) TableName() string {
	return "attribute_items"
}

// BeforeCreate stamps the entity kind label.
func (a *AttributeItem) BeforeCreate(tx *gorm.DB) error {
	a.Typename = TypenameAttributeItem
	return nil
}
