package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Skotchmaster/nexus_market/internal/events"
	"github.com/Skotchmaster/nexus_market/internal/imageresolver"
	"github.com/Skotchmaster/nexus_market/internal/models"
	"github.com/Skotchmaster/nexus_market/internal/util"
	"github.com/Skotchmaster/nexus_market/pkg/logging"
)

type CatalogRepo interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, prod *models.Product) error
	DeleteProduct(ctx context.Context, id uint) (bool, error)
	SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error)
}

type ImageResolver interface {
	Resolve(ctx context.Context, rawURL string) imageresolver.Result
}

type ProductIndex interface {
	Index(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo     CatalogRepo
	Guard    *AdminGuard
	Resolver ImageResolver
	Events   events.Publisher
	// Index is optional; without it search runs against the store.
	Index ProductIndex
}

type CreateProductRequest struct {
	Name           string
	Price          float64
	Description    string
	Image          string
	Category       models.Category
	WhatsAppNumber string
}

type SearchResult struct {
	Items []models.Product
	Total int64
	Page  int
	Size  int
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) CreateProduct(ctx context.Context, creds Credentials, req CreateProductRequest) (uint, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	if err := s.Guard.Verify(creds); err != nil {
		l.Warn("create_product_denied", "status", 403, "reason", "admin check failed")
		return 0, err
	}

	prod, err := newProduct(req)
	if err != nil {
		return 0, err
	}

	if s.Resolver != nil && prod.Image != "" {
		res := s.Resolver.Resolve(ctx, prod.Image)
		if res.Err != nil {
			l.Warn("image_resolve_error", "image", prod.Image, "error", res.Err)
		}
		prod.Image = res.URL
	}

	if err := s.Repo.CreateProduct(ctx, &prod); err != nil {
		l.Error("create_product_error", "status", 500, "reason", "insert failed", "error", err)
		return 0, err
	}

	s.publish(ctx, events.TopicProducts, events.Key(prod.ID), events.NewProductCreated(prod))
	if s.Index != nil {
		if err := s.Index.Index(ctx, prod); err != nil {
			l.Warn("search_index_error", "product_id", prod.ID, "error", err)
		}
	}

	l.Info("product_created", "product_id", prod.ID)
	return prod.ID, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, creds Credentials, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "product_id", id)

	if err := s.Guard.Verify(creds); err != nil {
		l.Warn("delete_product_denied", "status", 403, "reason", "admin check failed")
		return err
	}

	removed, err := s.Repo.DeleteProduct(ctx, id)
	if err != nil {
		l.Error("delete_product_error", "status", 500, "reason", "delete failed", "error", err)
		return err
	}
	if !removed {
		l.Info("delete_product_missing")
		return nil
	}

	s.publish(ctx, events.TopicProducts, events.Key(id), events.NewProductDeleted(id))
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			l.Warn("search_unindex_error", "error", err)
		}
	}
	return nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, q string, page, size int) (*SearchResult, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("empty query: %w", ErrValidation)
	}
	from, limit := util.Calculate(page, size)
	res := &SearchResult{Page: from/limit + 1, Size: limit}

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, q, from, limit)
		if err == nil {
			res.Total, res.Items = total, items
			return res, nil
		}
		l.Warn("search_index_error", "reason", "falling back to store", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, q, from, limit)
	if err != nil {
		l.Error("search_products_error", "status", 500, "error", err)
		return nil, err
	}
	res.Total, res.Items = total, items
	return res, nil
}

func (s *CatalogService) publish(ctx context.Context, topic, key string, ev any) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "key", key, "error", err)
	}
}

func newProduct(req CreateProductRequest) (models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Product{}, fmt.Errorf("name is required: %w", ErrValidation)
	}
	if math.IsNaN(req.Price) || math.IsInf(req.Price, 0) {
		return models.Product{}, fmt.Errorf("price is not a finite number: %w", ErrValidation)
	}
	if req.Price < 0 {
		return models.Product{}, fmt.Errorf("price cannot be negative: %w", ErrValidation)
	}
	cat := req.Category
	if cat == "" {
		cat = models.CategoryCPM
	}
	if !cat.Valid() {
		return models.Product{}, fmt.Errorf("unknown category %q: %w", cat, ErrValidation)
	}
	return models.Product{
		Name:           name,
		Price:          req.Price,
		Description:    req.Description,
		Image:          strings.TrimSpace(req.Image),
		Category:       cat,
		WhatsAppNumber: strings.TrimSpace(req.WhatsAppNumber),
	}, nil
}
