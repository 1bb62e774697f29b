package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShippingAddress struct {
	Address    string `json:"address"    validate:"required"`
	City       string `json:"city"       validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country"    validate:"required"`
}

type PaymentResult struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"        json:"-"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"    json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"    json:"product"`
	Name      string    `gorm:"not null"                    json:"name"`
	Qty       int       `gorm:"not null;check:qty > 0"      json:"qty"`
	Image     string    `                                   json:"image"`
	Price     float64   `gorm:"not null"                    json:"price"`
}

type Order struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"                              json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_order_idem"     json:"-"`
	User            *UserRef        `gorm:"foreignKey:UserID"                                 json:"user,omitempty"`
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `gorm:"type:text;serializer:json"                         json:"shippingAddress"`
	PaymentMethod   string          `gorm:"not null"                                          json:"paymentMethod"`
	PaymentResult   *PaymentResult  `gorm:"type:text;serializer:json"                         json:"paymentResult,omitempty"`
	ItemsPrice      float64         `gorm:"not null;default:0"                                json:"itemsPrice"`
	TaxPrice        float64         `gorm:"not null;default:0"                                json:"taxPrice"`
	ShippingPrice   float64         `gorm:"not null;default:0"                                json:"shippingPrice"`
	TotalPrice      float64         `gorm:"not null;default:0"                                json:"totalPrice"`
	IsPaid          bool            `gorm:"not null;default:false"                            json:"isPaid"`
	PaidAt          *time.Time      `                                                         json:"paidAt,omitempty"`
	IsDelivered     bool            `gorm:"not null;default:false"                            json:"isDelivered"`
	DeliveredAt     *time.Time      `                                                         json:"deliveredAt,omitempty"`
	IdempotencyKey  *string         `gorm:"uniqueIndex:idx_order_idem"                        json:"idempotencyKey,omitempty"`
	CreatedAt       time.Time       `                                                         json:"createdAt"`
	UpdatedAt       time.Time       `                                                         json:"updatedAt"`
}

// UserRef is the read-only projection of a user embedded in order responses.
type UserRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (UserRef) TableName() string {
	return "users"
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
