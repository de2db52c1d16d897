package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// Role is the access tier assigned to a user account.
// Values are matched exactly; unknown strings never authorize anything.
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// ParseRole maps a stored role string to a known Role.
// Unknown values degrade to RoleUser so a corrupted row can never
// grant admin access.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleSuperAdmin:
		return RoleSuperAdmin
	default:
		return RoleUser
	}
}

// User represents a local account (no external identity federation)
type User struct {
	BaseModel
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name"`
	Role         Role      `json:"role" gorm:"type:varchar(16);not null;default:USER"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Setting is the global configuration singleton (only one row should exist)
type Setting struct {
	BaseModel
	// Auto-generated on first setup (64 hex chars), never serialized
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"`
	SiteName  string `json:"site_name" gorm:"default:Graylock Security"`
}

// Category groups articles and products under a unique slug
type Category struct {
	BaseModel
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"unique;not null"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Article is a published or draft blog post
type Article struct {
	BaseModel
	Title      string    `json:"title" gorm:"not null"`
	Slug       string    `json:"slug" gorm:"unique;not null"`
	Excerpt    string    `json:"excerpt"`
	Content    string    `json:"content" gorm:"type:text"`
	CoverURL   string    `json:"cover_url"`
	Published  bool      `json:"published" gorm:"not null;default:false"`
	CategoryID string    `json:"category_id"`
	AuthorID   string    `json:"author_id"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Author   *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:ArticleID"`
}

// Video is an embedded training or talk recording
type Video struct {
	BaseModel
	Title       string    `json:"title" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"unique;not null"`
	Description string    `json:"description"`
	VideoURL    string    `json:"video_url" gorm:"not null"`
	DurationSec int       `json:"duration_sec"`
	Published   bool      `json:"published" gorm:"not null;default:false"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Course is a paid training offering
type Course struct {
	BaseModel
	Title       string    `json:"title" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"unique;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"not null;default:0"`
	Published   bool      `json:"published" gorm:"not null;default:false"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Product is a shop item (hardware, merch, report bundles)
type Product struct {
	BaseModel
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"unique;not null"`
	Description string    `json:"description"`
	Price       float64   `json:"price" gorm:"not null"`
	Stock       int       `json:"stock" gorm:"not null;default:0"`
	ImageURL    string    `json:"image_url"`
	CategoryID  string    `json:"category_id"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

// OrderStatus is the lifecycle state of a shop order
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderPaid      OrderStatus = "PAID"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// ValidOrderStatus reports whether s is a known order status
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderPending, OrderPaid, OrderShipped, OrderCancelled:
		return true
	}
	return false
}

// Order is a shop checkout with its line items
type Order struct {
	BaseModel
	Email           string      `json:"email" gorm:"not null;index"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(16);not null;default:PENDING"`
	Total           float64     `json:"total" gorm:"not null"`
	PaymentIntentID string      `json:"payment_intent_id,omitempty"`
	UpdatedAt       time.Time   `json:"updated_at" gorm:"autoUpdateTime"`

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is one product line within an order.
// UnitPrice is captured at checkout so later product edits don't
// rewrite past orders.
type OrderItem struct {
	BaseModel
	OrderID   string  `json:"order_id" gorm:"not null;index"`
	ProductID string  `json:"product_id" gorm:"not null"`
	Quantity  int     `json:"quantity" gorm:"not null"`
	UnitPrice float64 `json:"unit_price" gorm:"not null"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:SET NULL"`
}

// Comment is a reader comment on an article, hidden until approved
type Comment struct {
	BaseModel
	ArticleID  string `json:"article_id" gorm:"not null;index"`
	AuthorName string `json:"author_name" gorm:"not null"`
	Email      string `json:"email" gorm:"not null"`
	Body       string `json:"body" gorm:"type:text;not null"`
	Approved   bool   `json:"approved" gorm:"not null;default:false"`
}

// GalleryImage is an uploaded image served from the uploads directory
type GalleryImage struct {
	BaseModel
	Title       string `json:"title"`
	FilePath    string `json:"file_path" gorm:"not null"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&User{}, &Setting{}, &Category{}, &Article{}, &Video{}, &Course{},
		&Product{}, &Order{}, &OrderItem{}, &Comment{}, &GalleryImage{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
