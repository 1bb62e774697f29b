package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/transport"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// APIError is a non-2xx answer from the shop API.
type APIError struct {
	Status  int
	Message string
	// OrderID is set on 409 answers to a reused idempotency key.
	OrderID uuid.UUID
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WithHTTPClient swaps the underlying client, e.g. for httptest servers.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

type call struct {
	method  string
	path    string
	token   string
	headers map[string]string
	in      any
	out     any
}

func (c *Client) do(ctx context.Context, cl call) error {
	var body io.Reader
	if cl.in != nil {
		b, err := json.Marshal(cl.in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	for k, v := range cl.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if cl.out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Message string    `json:"message"`
		OrderID uuid.UUID `json:"orderId"`
		Errors  []struct {
			Param string `json:"param"`
			Msg   string `json:"msg"`
		} `json:"errors"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Message = payload.Message
		apiErr.OrderID = payload.OrderID
		if apiErr.Message == "" && len(payload.Errors) > 0 {
			msgs := make([]string, 0, len(payload.Errors))
			for _, fe := range payload.Errors {
				msgs = append(msgs, fe.Param+": "+fe.Msg)
			}
			apiErr.Message = strings.Join(msgs, "; ")
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func (c *Client) ListProducts(ctx context.Context, keyword string, page int) (*transport.ProductPage, error) {
	q := url.Values{}
	if keyword != "" {
		q.Set("keyword", keyword)
	}
	if page > 1 {
		q.Set("pageNumber", strconv.Itoa(page))
	}
	var out transport.ProductPage
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/products" + query(q), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SearchProducts(ctx context.Context, q string, page int) (*transport.ProductPage, error) {
	v := url.Values{"q": {q}}
	if page > 1 {
		v.Set("pageNumber", strconv.Itoa(page))
	}
	var out transport.ProductPage
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/products/search" + query(v), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/products/" + id.String(), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TopProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/products/top", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateReview(ctx context.Context, token string, productID uuid.UUID, req transport.ReviewRequest) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/api/products/" + productID.String() + "/reviews", token: token, in: req})
}

func (c *Client) Register(ctx context.Context, req transport.RegisterRequest) (*transport.AuthResponse, error) {
	var out transport.AuthResponse
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/users", in: req, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*transport.AuthResponse, error) {
	var out transport.AuthResponse
	req := transport.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/users/login", in: req, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*transport.AuthResponse, error) {
	var out transport.AuthResponse
	req := transport.RefreshRequest{RefreshToken: refreshToken}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/users/refresh", in: req, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	req := transport.RefreshRequest{RefreshToken: refreshToken}
	return c.do(ctx, call{method: http.MethodPost, path: "/api/users/logout", in: req})
}

func (c *Client) Profile(ctx context.Context, token string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/users/profile", token: token, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile answers with a fresh token pair for the updated user.
func (c *Client) UpdateProfile(ctx context.Context, token string, req transport.UpdateProfileRequest) (*transport.AuthResponse, error) {
	var out transport.AuthResponse
	if err := c.do(ctx, call{method: http.MethodPut, path: "/api/users/profile", token: token, in: req, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/users", token: token, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, token string, id uuid.UUID) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/users/" + id.String(), token: token, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, token string, id uuid.UUID, req transport.AdminUpdateUserRequest) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, call{method: http.MethodPut, path: "/api/users/" + id.String(), token: token, in: req, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, token string, id uuid.UUID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/api/users/" + id.String(), token: token})
}

func (c *Client) CreateProduct(ctx context.Context, token string, req transport.CreateProductRequest) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/products", token: token, in: req, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token string, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, call{method: http.MethodPatch, path: "/api/products/" + id.String(), token: token, in: req, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token string, id uuid.UUID) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/api/products/" + id.String(), token: token})
}

// CreateOrder sends key as the Idempotency-Key header when it is not empty.
func (c *Client) CreateOrder(ctx context.Context, token, key string, req transport.CreateOrderRequest) (*models.Order, error) {
	cl := call{method: http.MethodPost, path: "/api/orders", token: token, in: req}
	if key != "" {
		cl.headers = map[string]string{HeaderIdempotencyKey: key}
	}
	var out models.Order
	cl.out = &out
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetOrder(ctx context.Context, token string, id uuid.UUID) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/orders/" + id.String(), token: token, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PayOrder(ctx context.Context, token string, id uuid.UUID, result transport.PayOrderRequest) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, call{method: http.MethodPut, path: "/api/orders/" + id.String() + "/pay", token: token, in: result, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeliverOrder(ctx context.Context, token string, id uuid.UUID) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, call{method: http.MethodPut, path: "/api/orders/" + id.String() + "/deliver", token: token, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyOrders(ctx context.Context, token string) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/orders/myorders", token: token, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListOrders(ctx context.Context, token string) ([]models.Order, error) {
	var out []models.Order
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/orders", token: token, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

func query(v url.Values) string {
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}
