package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/transport"
)

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrEmptyCart      = errors.New("cart is empty")
	ErrNoShipping     = errors.New("shipping address is not set")
	ErrNoPayment      = errors.New("payment method is not set")
	ErrNotEnoughStock = errors.New("not enough stock")
)

// Store holds the client-side containers of the shop.
type Store struct {
	Client  *Client
	Session SessionStore
	Cart    *Cart
	Log     *slog.Logger

	ProductList       Slice[*transport.ProductPage]
	ProductDetails    Slice[*models.Product]
	TopProducts       Slice[[]models.Product]
	OrderCreate       Slice[*models.Order]
	OrderDetails      Slice[*models.Order]
	OrderPay          Slice[*models.Order]
	OrderListMy       Slice[[]models.Order]
	UserLogin         Slice[*transport.AuthResponse]
	UserDetails       Slice[*models.User]
	UserUpdateProfile Slice[*transport.AuthResponse]
	UserList          Slice[[]models.User]

	mu    sync.Mutex
	group singleflight.Group
}

// NewStore hydrates the cart and the logged-in user from session.
func NewStore(client *Client, session SessionStore, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cart, err := NewCart(session)
	if err != nil {
		return nil, err
	}
	s := &Store{Client: client, Session: session, Cart: cart, Log: log}

	var info transport.AuthResponse
	ok, err := session.Get(KeyUserInfo, &info)
	if err != nil {
		return nil, err
	}
	if ok && info.Token != "" {
		s.UserLogin.Set(&info)
	}
	return s, nil
}

// UserInfo is the logged-in user or nil.
func (s *Store) UserInfo() *transport.AuthResponse {
	return s.UserLogin.Snapshot().Data
}

func (s *Store) Login(ctx context.Context, email, password string) (*transport.AuthResponse, error) {
	return s.UserLogin.Run(ctx, func(ctx context.Context) (*transport.AuthResponse, error) {
		res, err := s.Client.Login(ctx, email, password)
		if err != nil {
			return nil, err
		}
		return res, s.Session.Set(KeyUserInfo, res)
	})
}

func (s *Store) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	return s.UserLogin.Run(ctx, func(ctx context.Context) (*transport.AuthResponse, error) {
		res, err := s.Client.Register(ctx, req)
		if err != nil {
			return nil, err
		}
		return res, s.Session.Set(KeyUserInfo, res)
	})
}

// Logout revokes the refresh token and clears the session, keeping the cart.
func (s *Store) Logout(ctx context.Context) error {
	if info := s.UserInfo(); info != nil && info.RefreshToken != "" {
		if err := s.Client.Logout(ctx, info.RefreshToken); err != nil {
			s.Log.Warn("logout_revoke_error", "error", err)
		}
	}
	if err := s.Session.ClearExcept(KeyCartItems); err != nil {
		return err
	}
	s.Cart.forgetCheckout()
	s.UserLogin.Reset()
	s.OrderCreate.Reset()
	s.OrderDetails.Reset()
	s.OrderPay.Reset()
	s.OrderListMy.Reset()
	s.UserDetails.Reset()
	s.UserUpdateProfile.Reset()
	s.UserList.Reset()
	return nil
}

// withAuth runs fn with the access token, refreshing once on a 401.
func (s *Store) withAuth(ctx context.Context, fn func(token string) error) error {
	info := s.UserInfo()
	if info == nil || info.Token == "" {
		return ErrNotLoggedIn
	}
	err := fn(info.Token)
	if StatusOf(err) != http.StatusUnauthorized || info.RefreshToken == "" {
		return err
	}

	next, rerr := s.Client.Refresh(ctx, info.RefreshToken)
	if rerr != nil {
		s.Log.Warn("token_refresh_error", "error", rerr)
		return err
	}
	if err := s.Session.Set(KeyUserInfo, next); err != nil {
		return err
	}
	s.UserLogin.Set(next)
	return fn(next.Token)
}

func (s *Store) LoadProfile(ctx context.Context) (*models.User, error) {
	return s.UserDetails.Run(ctx, func(ctx context.Context) (*models.User, error) {
		var u *models.User
		err := s.withAuth(ctx, func(token string) (err error) {
			u, err = s.Client.Profile(ctx, token)
			return err
		})
		return u, err
	})
}

// UpdateProfile saves the changes and swaps in the token pair issued for
// them, so the session follows a changed name or email.
func (s *Store) UpdateProfile(ctx context.Context, req transport.UpdateProfileRequest) (*transport.AuthResponse, error) {
	return s.UserUpdateProfile.Run(ctx, func(ctx context.Context) (*transport.AuthResponse, error) {
		var res *transport.AuthResponse
		err := s.withAuth(ctx, func(token string) (err error) {
			res, err = s.Client.UpdateProfile(ctx, token, req)
			return err
		})
		if err != nil {
			return nil, err
		}
		if err := s.Session.Set(KeyUserInfo, res); err != nil {
			return nil, err
		}
		s.UserLogin.Set(res)
		s.UserDetails.Reset()
		return res, nil
	})
}

func (s *Store) LoadUsers(ctx context.Context) ([]models.User, error) {
	return s.UserList.Run(ctx, func(ctx context.Context) ([]models.User, error) {
		var out []models.User
		err := s.withAuth(ctx, func(token string) (err error) {
			out, err = s.Client.ListUsers(ctx, token)
			return err
		})
		return out, err
	})
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u *models.User
	err := s.withAuth(ctx, func(token string) (err error) {
		u, err = s.Client.GetUser(ctx, token, id)
		return err
	})
	return u, err
}

func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, req transport.AdminUpdateUserRequest) (*models.User, error) {
	var u *models.User
	err := s.withAuth(ctx, func(token string) (err error) {
		u, err = s.Client.UpdateUser(ctx, token, id, req)
		return err
	})
	if err == nil {
		s.UserList.Reset()
	}
	return u, err
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	err := s.withAuth(ctx, func(token string) error {
		return s.Client.DeleteUser(ctx, token, id)
	})
	if err == nil {
		s.UserList.Reset()
	}
	return err
}

func (s *Store) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	var p *models.Product
	err := s.withAuth(ctx, func(token string) (err error) {
		p, err = s.Client.CreateProduct(ctx, token, req)
		return err
	})
	return p, err
}

func (s *Store) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	var p *models.Product
	err := s.withAuth(ctx, func(token string) (err error) {
		p, err = s.Client.UpdateProduct(ctx, token, id, req)
		return err
	})
	if err == nil {
		s.ProductDetails.Set(p)
	}
	return p, err
}

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.withAuth(ctx, func(token string) error {
		return s.Client.DeleteProduct(ctx, token, id)
	})
}

func (s *Store) LoadProducts(ctx context.Context, keyword string, page int) (*transport.ProductPage, error) {
	return s.ProductList.Run(ctx, func(ctx context.Context) (*transport.ProductPage, error) {
		return s.Client.ListProducts(ctx, keyword, page)
	})
}

func (s *Store) SearchProducts(ctx context.Context, q string, page int) (*transport.ProductPage, error) {
	return s.ProductList.Run(ctx, func(ctx context.Context) (*transport.ProductPage, error) {
		return s.Client.SearchProducts(ctx, q, page)
	})
}

func (s *Store) LoadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.ProductDetails.Run(ctx, func(ctx context.Context) (*models.Product, error) {
		return s.Client.GetProduct(ctx, id)
	})
}

func (s *Store) LoadTopProducts(ctx context.Context) ([]models.Product, error) {
	return s.TopProducts.Run(ctx, s.Client.TopProducts)
}

func (s *Store) Review(ctx context.Context, productID uuid.UUID, rating int, comment string) error {
	return s.withAuth(ctx, func(token string) error {
		return s.Client.CreateReview(ctx, token, productID, transport.ReviewRequest{Rating: rating, Comment: comment})
	})
}

// AddToCart fetches the current product and puts qty of it in the cart.
func (s *Store) AddToCart(ctx context.Context, productID uuid.UUID, qty int) (CartItem, error) {
	if qty < 1 {
		return CartItem{}, ErrInvalidQty
	}
	p, err := s.Client.GetProduct(ctx, productID)
	if err != nil {
		return CartItem{}, err
	}
	if qty > p.Stock {
		return CartItem{}, fmt.Errorf("%w: %s has %d left", ErrNotEnoughStock, p.Name, p.Stock)
	}
	item := ItemFromProduct(p, qty)
	return item, s.Cart.Add(item)
}

// PlaceOrder submits the cart. Concurrent calls share one request and every
// retry of the same checkout reuses its idempotency key, so the order is
// created at most once. The cart is emptied on success.
func (s *Store) PlaceOrder(ctx context.Context) (*models.Order, error) {
	v, err, _ := s.group.Do("place-order", func() (any, error) {
		return s.OrderCreate.Run(ctx, s.placeOrder)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Order), nil
}

func (s *Store) placeOrder(ctx context.Context) (*models.Order, error) {
	items := s.Cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	addr := s.Cart.ShippingAddress()
	if addr.Address == "" || addr.City == "" || addr.PostalCode == "" || addr.Country == "" {
		return nil, ErrNoShipping
	}
	method := s.Cart.PaymentMethod()
	if method == "" {
		return nil, ErrNoPayment
	}
	key, err := s.checkoutKey()
	if err != nil {
		return nil, err
	}

	req := transport.CreateOrderRequest{
		ShippingAddress: addr,
		PaymentMethod:   method,
		ItemsPrice:      s.Cart.Subtotal(),
	}
	for _, it := range items {
		req.OrderItems = append(req.OrderItems, transport.CreateOrderItem{ProductID: it.ProductID, Qty: it.Qty})
	}

	var order *models.Order
	err = s.withAuth(ctx, func(token string) error {
		o, err := s.Client.CreateOrder(ctx, token, key, req)
		order = o
		return err
	})

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict && apiErr.OrderID != uuid.Nil {
		s.Log.Info("order_already_placed", "order_id", apiErr.OrderID)
		existing := apiErr.OrderID
		err = s.withAuth(ctx, func(token string) error {
			o, err := s.Client.GetOrder(ctx, token, existing)
			order = o
			return err
		})
	}
	if err != nil {
		return nil, err
	}

	if err := s.Cart.Clear(); err != nil {
		return nil, err
	}
	if err := s.Session.Delete(KeyCheckout); err != nil {
		return nil, err
	}
	return order, nil
}

// checkoutKey returns the idempotency key of the pending checkout,
// creating one on first use.
func (s *Store) checkoutKey() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var key string
	ok, err := s.Session.Get(KeyCheckout, &key)
	if err != nil {
		return "", err
	}
	if ok && key != "" {
		return key, nil
	}
	key = uuid.NewString()
	return key, s.Session.Set(KeyCheckout, key)
}

func (s *Store) LoadOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.OrderDetails.Run(ctx, func(ctx context.Context) (*models.Order, error) {
		var o *models.Order
		err := s.withAuth(ctx, func(token string) (err error) {
			o, err = s.Client.GetOrder(ctx, token, id)
			return err
		})
		return o, err
	})
}

func (s *Store) PayOrder(ctx context.Context, id uuid.UUID, result transport.PayOrderRequest) (*models.Order, error) {
	return s.OrderPay.Run(ctx, func(ctx context.Context) (*models.Order, error) {
		var o *models.Order
		err := s.withAuth(ctx, func(token string) (err error) {
			o, err = s.Client.PayOrder(ctx, token, id, result)
			return err
		})
		return o, err
	})
}

func (s *Store) LoadMyOrders(ctx context.Context) ([]models.Order, error) {
	return s.OrderListMy.Run(ctx, func(ctx context.Context) ([]models.Order, error) {
		var out []models.Order
		err := s.withAuth(ctx, func(token string) (err error) {
			out, err = s.Client.MyOrders(ctx, token)
			return err
		})
		return out, err
	})
}

func (s *Store) AllOrders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	err := s.withAuth(ctx, func(token string) (err error) {
		out, err = s.Client.ListOrders(ctx, token)
		return err
	})
	return out, err
}

func (s *Store) DeliverOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o *models.Order
	err := s.withAuth(ctx, func(token string) (err error) {
		o, err = s.Client.DeliverOrder(ctx, token, id)
		return err
	})
	return o, err
}
