package marketclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Skotchmaster/nexus_market/internal/models"
)

type Client struct {
	http *resty.Client
}

func NewClient(baseURL string) *Client {
	return NewWithResty(resty.New(), baseURL)
}

func NewWithResty(rc *resty.Client, baseURL string) *Client {
	rc.SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15*time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: rc}
}

// APIError carries the {"error": "..."} body the server returns.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// Auth is what admin calls present. Token wins server side when both are set
// and valid.
type Auth struct {
	Token         string
	AdminPassword string
}

type LoginResponse struct {
	Success bool               `json:"success"`
	User    models.SessionUser `json:"user"`
	Token   string             `json:"token"`
}

type SearchMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type SearchPage struct {
	Data []models.Product `json:"data"`
	Meta SearchMeta       `json:"meta"`
}

type NewProduct struct {
	Name           string          `json:"name"`
	Price          float64         `json:"price"`
	Description    string          `json:"description"`
	Image          string          `json:"image"`
	Category       models.Category `json:"category"`
	WhatsAppNumber string          `json:"whatsapp_number"`
	AdminPassword  string          `json:"admin_password,omitempty"`
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).SetError(&APIError{})
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	if !resp.IsError() {
		return nil
	}
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.Status = resp.StatusCode()
	return apiErr
}

func withAuth(r *resty.Request, auth Auth) *resty.Request {
	if auth.Token != "" {
		r.SetAuthToken(auth.Token)
	}
	return r
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := check(c.request(ctx).SetResult(&out).Get("/api/products")); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Product{}
	}
	return out, nil
}

func (c *Client) SearchProducts(ctx context.Context, q string, page, size int) (*SearchPage, error) {
	var out SearchPage
	err := check(c.request(ctx).
		SetQueryParams(map[string]string{
			"q":    q,
			"page": strconv.Itoa(page),
			"size": strconv.Itoa(size),
		}).
		SetResult(&out).
		Get("/api/products/search"))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, username, password string) error {
	return check(c.request(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		Post("/api/auth/register"))
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := check(c.request(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&out).
		Post("/api/auth/login"))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, auth Auth, p NewProduct) (uint, error) {
	p.AdminPassword = auth.AdminPassword
	var out struct {
		Success bool `json:"success"`
		ID      uint `json:"id"`
	}
	err := check(withAuth(c.request(ctx), auth).
		SetBody(p).
		SetResult(&out).
		Post("/api/products"))
	if err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) DeleteProduct(ctx context.Context, auth Auth, id uint) error {
	body := map[string]string{}
	if auth.AdminPassword != "" {
		body["admin_password"] = auth.AdminPassword
	}
	return check(withAuth(c.request(ctx), auth).
		SetBody(body).
		Delete("/api/products/" + strconv.FormatUint(uint64(id), 10)))
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
