package models

import (
	"time"
)

type PublishStatus string

const (
	StatusPublish PublishStatus = "publish"
	StatusDraft   PublishStatus = "draft"
	StatusTrash   PublishStatus = "trash"
)

// Product is a catalog item in the store's own database.
type Product struct {
	ID               uint                `json:"id" gorm:"primaryKey;autoIncrement"`
	Name             string              `json:"name" gorm:"not null"`
	Description      string              `json:"description"`
	ShortDescription string              `json:"short_description"`
	Price            float64             `json:"price" gorm:"type:decimal(10,2)"`
	RegularPrice     float64             `json:"regular_price" gorm:"type:decimal(10,2)"`
	SalePrice        *float64            `json:"sale_price" gorm:"type:decimal(10,2)"`
	StockQuantity    *int                `json:"stock_quantity"`
	StockStatus      string              `json:"stock_status" gorm:"default:instock"`
	SKU              string              `json:"sku" gorm:"uniqueIndex"`
	Permalink        string              `json:"permalink"`
	Categories       []string            `json:"categories" gorm:"serializer:json"`
	Tags             []string            `json:"tags" gorm:"serializer:json"`
	Attributes       []ProductAttribute  `json:"attributes" gorm:"serializer:json"`
	ImageURL         string              `json:"image_url"`
	Status           PublishStatus       `json:"status" gorm:"default:publish;index"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ProductAttribute is a normalized product attribute, taxonomy-backed or custom.
type ProductAttribute struct {
	Name      string   `json:"name"`
	Label     string   `json:"label"`
	Options   []string `json:"options"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Position  int      `json:"position"`
	Source    string   `json:"source"`
}

// Post is any non-product content item (posts, pages, custom types).
type Post struct {
	ID         uint                `json:"id" gorm:"primaryKey;autoIncrement"`
	Type       string              `json:"type" gorm:"not null;index"`
	Title      string              `json:"title" gorm:"not null"`
	Body       string              `json:"body"`
	Excerpt    string              `json:"excerpt"`
	Author     string              `json:"author"`
	Taxonomies map[string][]string `json:"taxonomies" gorm:"serializer:json"`
	Permalink  string              `json:"permalink"`
	ImageURL   string              `json:"image_url"`
	Status     PublishStatus       `json:"status" gorm:"default:publish;index"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

type Order struct {
	ID        uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	Status    string      `json:"status" gorm:"default:pending"`
	Total     float64     `json:"total" gorm:"type:decimal(10,2)"`
	Items     []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt time.Time   `json:"created_at" gorm:"index"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID       uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID  uint    `json:"order_id" gorm:"index"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total" gorm:"type:decimal(10,2)"`
}
