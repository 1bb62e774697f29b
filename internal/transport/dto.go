package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/camera_shop/internal/models"
)

type CreateProductRequest struct {
	Name           string                `json:"name"           validate:"required"`
	Price          *float64              `json:"price"          validate:"required,gte=0"`
	Description    string                `json:"description"    validate:"required"`
	Category       string                `json:"category"       validate:"required,oneof=dslr mirrorless compact action drone"`
	Brand          string                `json:"brand"          validate:"required,oneof=sony canon nikon fujifilm panasonic olympus leica other"`
	Features       []string              `json:"features"`
	Specifications models.Specifications `json:"specifications"`
	Images         []models.Image        `json:"images"         validate:"dive"`
	Stock          int                   `json:"stock"          validate:"gte=0"`
	IsFeatured     bool                  `json:"isFeatured"`
	ReleaseDate    *time.Time            `json:"releaseDate"`
}

// PatchProductRequest lists every field an admin may change. Anything else in
// the body is ignored.
type PatchProductRequest struct {
	Name           *string                `json:"name"           validate:"omitempty,min=1"`
	Price          *float64               `json:"price"          validate:"omitempty,gte=0"`
	Description    *string                `json:"description"    validate:"omitempty,min=1"`
	Features       *[]string              `json:"features"`
	Specifications *models.Specifications `json:"specifications"`
	Images         *[]models.Image        `json:"images"`
	Category       *string                `json:"category"       validate:"omitempty,oneof=dslr mirrorless compact action drone"`
	Brand          *string                `json:"brand"          validate:"omitempty,oneof=sony canon nikon fujifilm panasonic olympus leica other"`
	Stock          *int                   `json:"stock"          validate:"omitempty,gte=0"`
	IsFeatured     *bool                  `json:"isFeatured"`
	ReleaseDate    *time.Time             `json:"releaseDate"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"  validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"required"`
}

type ProductPage struct {
	Products []models.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
}

type CreateOrderItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Qty       int       `json:"qty"       validate:"gte=1"`
}

type CreateOrderRequest struct {
	OrderItems      []CreateOrderItem      `json:"orderItems"      validate:"dive"`
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod"   validate:"required"`
	ItemsPrice      float64                `json:"itemsPrice"`
	TaxPrice        float64                `json:"taxPrice"`
	ShippingPrice   float64                `json:"shippingPrice"`
	TotalPrice      float64                `json:"totalPrice"`
}

type PayOrderRequest struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=1"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,password"`
}

type AdminUpdateUserRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role"  validate:"omitempty,oneof=user admin"`
}

// AuthResponse is what register, login and refresh return.
type AuthResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsAdmin      bool      `json:"isAdmin"`
	Token        string    `json:"token"`
	TokenExp     time.Time `json:"tokenExpiresAt"`
	RefreshToken string    `json:"refreshToken"`
	RefreshExp   time.Time `json:"refreshExpiresAt"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ConflictResponse struct {
	Message string    `json:"message"`
	OrderID uuid.UUID `json:"orderId"`
}
