package repo

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Voucher is a persisted promotional code row.
type Voucher struct {
	ID             uuid.UUID  `json:"id"`
	Code           string     `json:"code"`
	Name           string     `json:"name"`
	Kind           string     `json:"kind"`
	DiscountType   string     `json:"discountType"`
	Value          int64      `json:"value"`
	PercentBps     *int32     `json:"percentBps,omitempty"`
	ApplyToCountry *string    `json:"applyToCountry,omitempty"`
	ProductID      *uuid.UUID `json:"productId,omitempty"`
	CategoryID     *uuid.UUID `json:"categoryId,omitempty"`
	MinSpend       int64      `json:"minSpend"`
	UsageLimit     *int32     `json:"usageLimit,omitempty"`
	UsedCount      int32      `json:"usedCount"`
	ValidFrom      *time.Time `json:"validFrom,omitempty"`
	ValidTo        *time.Time `json:"validTo,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Cart is the shopper's persisted aggregate root.
type Cart struct {
	ID               uuid.UUID       `json:"id"`
	UserID           *uuid.UUID      `json:"userId,omitempty"`
	AnonID           *string         `json:"anonId,omitempty"`
	VoucherCode      *string         `json:"voucherCode,omitempty"`
	DiscountAmount   int64           `json:"discountAmount"`
	DiscountName     string          `json:"discountName,omitempty"`
	ShippingMethodID *uuid.UUID      `json:"shippingMethodId,omitempty"`
	ShippingAddress  json.RawMessage `json:"shippingAddress,omitempty"`
	BillingAddress   json.RawMessage `json:"billingAddress,omitempty"`
	ExpiresAt        time.Time       `json:"expiresAt"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// CartItem is a quantity of a product variant inside a cart.
type CartItem struct {
	ID        uuid.UUID  `json:"id"`
	CartID    uuid.UUID  `json:"cartId"`
	ProductID uuid.UUID  `json:"productId"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Title     string     `json:"title"`
	Qty       int32      `json:"qty"`
	UnitPrice int64      `json:"unitPrice"`
	Subtotal  int64      `json:"subtotal"`
}

// Product carries the catalog fields needed by cart and voucher flows.
type Product struct {
	ID               uuid.UUID
	Title            string
	Slug             string
	Price            int64
	CategoryID       *uuid.UUID
	RequiresShipping bool
}

// Variant is a purchasable variation of a product.
type Variant struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	SKU       string
	Price     int64
	Stock     int32
}

// ShippingMethod is a deliverable option restricted to a single country.
type ShippingMethod struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Courier     string    `json:"courier"`
	CountryCode string    `json:"countryCode"`
	Price       int64     `json:"price"`
}

// User is a staff or customer account.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DomainEvent is a persisted record of something that happened.
type DomainEvent struct {
	ID          uuid.UUID
	Topic       string
	AggregateID uuid.UUID
	Payload     []byte
	OccurredAt  time.Time
}
