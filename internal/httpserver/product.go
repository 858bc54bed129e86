package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/nexus_market/internal/models"
	"github.com/Skotchmaster/nexus_market/internal/service"
	"github.com/Skotchmaster/nexus_market/internal/util"
	"github.com/Skotchmaster/nexus_market/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// Price accepts both 12.5 and "12.5"; browser forms send the latter.
type createProductRequest struct {
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Description    string          `json:"description"`
	Image          string          `json:"image"`
	Category       models.Category `json:"category"`
	WhatsAppNumber string          `json:"whatsapp_number"`
	AdminPassword  string          `json:"admin_password"`
}

type deleteProductRequest struct {
	AdminPassword string `json:"admin_password"`
}

func credentials(c echo.Context, adminPassword string) service.Credentials {
	creds := service.Credentials{AdminPassword: adminPassword}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		creds.BearerToken = strings.TrimSpace(auth[7:])
	}
	return creds
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list_products")

	items, err := h.Svc.ListProducts(ctx)
	if err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot read products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch products")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search_products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	res, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_products_error", "status", 400, "reason", "empty query")
			return echo.NewHTTPError(http.StatusBadRequest, "Query parameter q is required")
		}
		l.Error("search_products_error", "status", 500, "reason", "search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Search failed")
	}

	offset := (res.Page - 1) * res.Size
	return c.JSON(http.StatusOK, map[string]any{
		"data": res.Items,
		"meta": map[string]any{
			"page":        res.Page,
			"size":        res.Size,
			"total":       res.Total,
			"total_pages": (res.Total + int64(res.Size) - 1) / int64(res.Size),
			"has_prev":    res.Page > 1,
			"has_next":    int64(offset+res.Size) < res.Total,
		},
	})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	id, err := h.Svc.CreateProduct(ctx, credentials(c, req.AdminPassword), service.CreateProductRequest{
		Name:           req.Name,
		Price:          req.Price.InexactFloat64(),
		Description:    req.Description,
		Image:          req.Image,
		Category:       req.Category,
		WhatsAppNumber: req.WhatsAppNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			return echo.NewHTTPError(http.StatusForbidden, "Unauthorized")
		case errors.Is(err, service.ErrValidation):
			l.Warn("product_create_error", "status", 400, "reason", "invalid product", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid product data")
		default:
			l.Error("product_create_error", "status", 500, "reason", "cannot add product to db", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create product")
		}
	}

	l.Info("create_product_success", "product_id", id)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "id": id})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_product")

	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		l.Warn("product_delete_error", "status", 400, "reason", "id is not a positive integer", "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid product id")
	}

	var req deleteProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if err := h.Svc.DeleteProduct(ctx, credentials(c, req.AdminPassword), uint(id)); err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return echo.NewHTTPError(http.StatusForbidden, "Unauthorized")
		}
		l.Error("product_delete_error", "status", 500, "reason", "cannot delete product from db", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete product")
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
