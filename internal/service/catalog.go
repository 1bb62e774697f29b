package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/camera_shop/internal/es"
	"github.com/Skotchmaster/camera_shop/internal/logging"
	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/mykafka"
	"github.com/Skotchmaster/camera_shop/internal/repo"
	"github.com/Skotchmaster/camera_shop/internal/transport"
	"github.com/Skotchmaster/camera_shop/internal/util"
)

const topProductsLimit = 3

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  es.ProductIndex
	Events mykafka.Publisher
}

func NewCatalogService(r *repo.GormRepo, index es.ProductIndex, events mykafka.Publisher) *CatalogService {
	if index == nil {
		index = es.Nop{}
	}
	if events == nil {
		events = mykafka.Nop{}
	}
	return &CatalogService{Repo: r, Index: index, Events: events}
}

func (s *CatalogService) ListProducts(ctx context.Context, keyword string, page int) (*transport.ProductPage, error) {
	offset, limit := util.Calculate(page, util.ProductPageSize)
	total, items, err := s.Repo.ListProducts(ctx, keyword, offset, limit)
	if err != nil {
		return nil, err
	}
	return &transport.ProductPage{Products: items, Page: page, Pages: util.Pages(total, util.ProductPageSize)}, nil
}

// SearchProducts ranks through the search index and falls back to the keyword
// listing when the index is disabled or failing.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, page int) (*transport.ProductPage, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	offset, limit := util.Calculate(page, util.ProductPageSize)
	total, ids, err := s.Index.Search(ctx, q, offset, limit)
	if err != nil {
		if !errors.Is(err, es.ErrDisabled) {
			l.Warn("search_index_error", "reason", "falling back to keyword listing", "error", err)
		}
		return s.ListProducts(ctx, q, page)
	}

	items, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &transport.ProductPage{Products: items, Page: page, Pages: util.Pages(total, util.ProductPageSize)}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return p, nil
}

func (s *CatalogService) TopProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.TopProducts(ctx, topProductsLimit)
}

func (s *CatalogService) CreateProduct(ctx context.Context, creator uuid.UUID, req transport.CreateProductRequest) (*models.Product, error) {
	if req.Price == nil || *req.Price < 0 {
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	}
	p := &models.Product{
		UserID:         &creator,
		Name:           req.Name,
		Price:          *req.Price,
		Description:    req.Description,
		Features:       req.Features,
		Specifications: req.Specifications,
		Images:         req.Images,
		Category:       req.Category,
		Brand:          req.Brand,
		Stock:          req.Stock,
		IsFeatured:     req.IsFeatured,
		Reviews:        []models.Review{},
	}
	if req.ReleaseDate != nil {
		p.ReleaseDate = req.ReleaseDate.UTC()
	}
	if models.Slugify(p.Name) == "" {
		return nil, fmt.Errorf("%w: name must contain letters or digits", ErrValidation)
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: a product with slug %q already exists", ErrConflict, p.Slug)
		}
		return nil, err
	}

	s.reindex(ctx, p)
	s.publish(ctx, "product_created", p)
	return p, nil
}

// UpdateProduct writes only the fields present in req, so concurrent stock
// decrements and rating recomputes are never overwritten by a stale copy.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	cols := applyPatch(p, req)
	if p.Price < 0 || p.Stock < 0 {
		return nil, fmt.Errorf("%w: price and stock must be >= 0", ErrValidation)
	}
	if models.Slugify(p.Name) == "" {
		return nil, fmt.Errorf("%w: name must contain letters or digits", ErrValidation)
	}
	p.Slug = models.Slugify(p.Name)

	if err := s.Repo.UpdateProductColumns(ctx, p, cols); err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: a product with slug %q already exists", ErrConflict, p.Slug)
		}
		return nil, notFound(err, "product")
	}

	fresh, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	s.reindex(ctx, fresh)
	s.publish(ctx, "product_updated", fresh)
	return fresh, nil
}

// applyPatch copies the set fields of req onto p and returns their columns.
func applyPatch(p *models.Product, req transport.PatchProductRequest) []string {
	var cols []string
	if req.Name != nil {
		p.Name = *req.Name
		cols = append(cols, "name")
	}
	if req.Price != nil {
		p.Price = *req.Price
		cols = append(cols, "price")
	}
	if req.Description != nil {
		p.Description = *req.Description
		cols = append(cols, "description")
	}
	if req.Features != nil {
		p.Features = *req.Features
		cols = append(cols, "features")
	}
	if req.Specifications != nil {
		p.Specifications = *req.Specifications
		cols = append(cols, "specifications")
	}
	if req.Images != nil {
		p.Images = *req.Images
		cols = append(cols, "images")
	}
	if req.Category != nil {
		p.Category = *req.Category
		cols = append(cols, "category")
	}
	if req.Brand != nil {
		p.Brand = *req.Brand
		cols = append(cols, "brand")
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
		cols = append(cols, "stock")
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
		cols = append(cols, "is_featured")
	}
	if req.ReleaseDate != nil {
		p.ReleaseDate = req.ReleaseDate.UTC()
		cols = append(cols, "release_date")
	}
	return cols
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "product")
	}
	if err := s.Index.DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "op", "delete", "product_id", id, "error", err)
	}
	s.publishEvent(ctx, id.String(), map[string]any{"type": "product_deleted", "productID": id})
	return nil
}

// AddReview stores one review per user and product and refreshes the
// aggregate rating in the same transaction.
func (s *CatalogService) AddReview(ctx context.Context, productID uuid.UUID, caller Caller, req transport.ReviewRequest) error {
	if req.Rating < 1 || req.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	err := s.Repo.WithTransaction(ctx, func(tx *repo.GormRepo) error {
		if _, err := tx.LockProduct(ctx, productID); err != nil {
			return notFound(err, "product")
		}
		reviewed, err := tx.HasReviewed(ctx, productID, caller.ID)
		if err != nil {
			return err
		}
		if reviewed {
			return fmt.Errorf("%w: Product already reviewed", ErrAlreadyReviewed)
		}
		rv := &models.Review{
			ProductID: productID,
			UserID:    caller.ID,
			Name:      caller.Name,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}
		if err := tx.CreateReview(ctx, rv); err != nil {
			if repo.IsUniqueViolation(err) {
				return fmt.Errorf("%w: Product already reviewed", ErrAlreadyReviewed)
			}
			return err
		}
		return tx.RecomputeRating(ctx, productID)
	})
	if err != nil {
		return err
	}

	if p, err := s.Repo.GetProduct(ctx, productID); err == nil {
		s.reindex(ctx, p)
		s.publish(ctx, "product_reviewed", p)
	}
	return nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "op", "index", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) publish(ctx context.Context, eventType string, p *models.Product) {
	s.publishEvent(ctx, p.ID.String(), map[string]any{
		"type":       eventType,
		"productID":  p.ID,
		"name":       p.Name,
		"slug":       p.Slug,
		"price":      p.Price,
		"stock":      p.Stock,
		"rating":     p.Rating,
		"numReviews": p.NumReviews,
		"at":         time.Now().UTC(),
	})
}

func (s *CatalogService) publishEvent(ctx context.Context, key string, event map[string]any) {
	if err := s.Events.PublishEvent(ctx, mykafka.TopicProducts, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", mykafka.TopicProducts, "error", err)
	}
}
