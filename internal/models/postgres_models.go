package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatusPendingPayment is the status of every order at checkout; payment
// happens off-platform over UPI.
const OrderStatusPendingPayment = "pending_payment"

// LineItem is a cart line as persisted in JSON columns.
type LineItem struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Category  string  `json:"category"`
	Quantity  int     `json:"quantity"`
}

// LineItems is stored as a jsonb array.
type LineItems []LineItem

func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

func (l *LineItems) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return errors.New("line items: unsupported column type")
	}
}

// CartSnapshot model - PostgreSQL. Latest state of a session's cart.
type CartSnapshot struct {
	SessionID  string    `gorm:"primaryKey;size:64" json:"session_id"`
	Lines      LineItems `gorm:"type:jsonb" json:"lines"`
	TotalItems int       `json:"total_items"`
	TotalPrice float64   `json:"total_price"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Order model - PostgreSQL
type Order struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID      string    `gorm:"size:64;index" json:"session_id"`
	CustomerName   string    `gorm:"not null" json:"customer_name"`
	Phone          string    `gorm:"size:10;not null" json:"phone"`
	Address        string    `gorm:"not null" json:"address"`
	DeliveryDate   string    `gorm:"size:10;not null" json:"delivery_date"`
	DeliveryTime   string    `gorm:"size:32;not null" json:"delivery_time"`
	Items          LineItems `gorm:"type:jsonb" json:"items"`
	ItemsTotal     float64   `json:"items_total"`
	DeliveryCharge float64   `json:"delivery_charge"`
	TotalAmount    float64   `json:"total_amount"`
	Status         string    `gorm:"size:32;not null" json:"status"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
