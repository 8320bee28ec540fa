package domain

import (
	"time"

	"github.com/sellpoint/api/internal/precheck"
)

// Order state values persisted in storage.
const (
	OrderBasket    = "BK"
	OrderNew       = "NW"
	OrderConfirmed = "CF"
	OrderAssembled = "AS"
	OrderSent      = "ST"
	OrderCanceled  = "CN"
	OrderReceived  = "RV"
)

// OrderStateEnum declares the order lifecycle states. Query filters and
// state transitions coerce client tokens through it.
var OrderStateEnum = precheck.MustEnum("state",
	precheck.Variant{Name: "BASKET", Value: OrderBasket, Label: "Basket"},
	precheck.Variant{Name: "NEW", Value: OrderNew, Label: "New"},
	precheck.Variant{Name: "CONFIRMED", Value: OrderConfirmed, Label: "Confirmed"},
	precheck.Variant{Name: "ASSEMBLED", Value: OrderAssembled, Label: "Assembled"},
	precheck.Variant{Name: "SENT", Value: OrderSent, Label: "Sent"},
	precheck.Variant{Name: "CANCELED", Value: OrderCanceled, Label: "Canceled"},
	precheck.Variant{Name: "RECEIVED", Value: OrderReceived, Label: "Received"},
)

// OrderItem is one line of an order.
type OrderItem struct {
	ProductInfoID string `json:"product_info" dynamodbav:"product_info_id"`
	Quantity      int    `json:"quantity" dynamodbav:"quantity"`
	Price         int    `json:"price" dynamodbav:"price"`
}

// Order is a customer's order. It starts life as a basket and moves
// through the OrderStateEnum lifecycle.
type Order struct {
	OrderID    string      `json:"id" dynamodbav:"order_id"`
	CustomerID string      `json:"-" dynamodbav:"customer_id"`
	State      string      `json:"state" dynamodbav:"state"`
	Items      []OrderItem `json:"ordered_items" dynamodbav:"items"`
	ContactID  string      `json:"contact,omitempty" dynamodbav:"contact_id"`
	Sum        int         `json:"sum" dynamodbav:"sum"`
	CreatedAt  time.Time   `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt  time.Time   `json:"updated" dynamodbav:"updated_at"`
}

// Total recomputes the order sum from its items.
func (o *Order) Total() int {
	sum := 0
	for _, it := range o.Items {
		sum += it.Price * it.Quantity
	}
	return sum
}
