package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is one line of a purchase order.
type OrderItem struct {
	ProductName    string `json:"product_name"   bson:"product_name"`
	ManufacturerID string `json:"manufacturer_id" bson:"manufacturer_id"`
	Packaging      string `json:"packaging"      bson:"packaging"`
	UnitOfMeasure  string `json:"unit_of_measure" bson:"unit_of_measure"`
	Quantity       int    `json:"quantity"       bson:"quantity"`
}

// Order is a purchase order stored in MongoDB.
type Order struct {
	ID        primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	Status    string             `json:"status"     bson:"status"`
	Items     []OrderItem        `json:"items"      bson:"items"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// RFQItem pairs a product with the requested quantity.
type RFQItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// RFQTerms are the standard terms attached to every generated RFQ.
type RFQTerms struct {
	Compliance string `json:"compliance"`
	Payment    string `json:"payment"`
	Validity   string `json:"validity"`
}

// RFQDocument is a request-for-quote generated for selected products.
type RFQDocument struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Items []RFQItem `json:"items"`
	Terms RFQTerms  `json:"terms"`
}
