package models

import (
	"strconv"
	"time"
)

// MenuItem model - MongoDB. The numeric id doubles as the document _id and is
// the item id the cart uses.
type MenuItem struct {
	ID          int64     `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Price       float64   `bson:"price" json:"price"`
	Description string    `bson:"description" json:"description"`
	Category    string    `bson:"category" json:"category"`
	Image       string    `bson:"image,omitempty" json:"image,omitempty"`
	IsAvailable bool      `bson:"is_available" json:"is_available"`
	UpdatedAt   time.Time `bson:"updated_at" json:"-"`
}

// ItemID is the string form used as the cart line id.
func (m MenuItem) ItemID() string {
	return strconv.FormatInt(m.ID, 10)
}
