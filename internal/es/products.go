package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/camera_shop/internal/models"
)

// ErrDisabled is returned by Search when no cluster is configured; callers fall
// back to the database listing.
var ErrDisabled = errors.New("search disabled")

type ProductIndex interface {
	EnsureIndex(ctx context.Context) error
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, q string, offset, limit int) (int64, []uuid.UUID, error)
}

type Nop struct{}

func (Nop) EnsureIndex(context.Context) error                   { return nil }
func (Nop) IndexProduct(context.Context, *models.Product) error { return nil }
func (Nop) DeleteProduct(context.Context, uuid.UUID) error      { return nil }
func (Nop) Search(context.Context, string, int, int) (int64, []uuid.UUID, error) {
	return 0, nil, ErrDisabled
}

type Products struct {
	Client *elasticsearch.Client
	Index  string
}

func NewProducts(client *elasticsearch.Client, index string) *Products {
	return &Products{Client: client, Index: index}
}

type productDoc struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Features    []string `json:"features"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	Stock       int      `json:"stock"`
}

const productMapping = `{
  "mappings": {
    "properties": {
      "name":        {"type": "text"},
      "description": {"type": "text"},
      "brand":       {"type": "keyword"},
      "category":    {"type": "keyword"},
      "features":    {"type": "text"},
      "price":       {"type": "double"},
      "rating":      {"type": "double"},
      "stock":       {"type": "integer"}
    }
  }
}`

func (p *Products) EnsureIndex(ctx context.Context) error {
	c := p.Client
	res, err := c.Indices.Exists([]string{p.Index}, c.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = c.Indices.Create(p.Index,
		c.Indices.Create.WithContext(ctx),
		c.Indices.Create.WithBody(bytes.NewReader([]byte(productMapping))),
	)
	if err != nil {
		return fmt.Errorf("es: create index: %w", err)
	}
	defer res.Body.Close()
	return responseError("create index", res.IsError(), res.Status(), res.Body)
}

func (p *Products) IndexProduct(ctx context.Context, prod *models.Product) error {
	body, err := json.Marshal(productDoc{
		Name:        prod.Name,
		Description: prod.Description,
		Brand:       prod.Brand,
		Category:    prod.Category,
		Features:    prod.Features,
		Price:       prod.Price,
		Rating:      prod.Rating,
		Stock:       prod.Stock,
	})
	if err != nil {
		return fmt.Errorf("es: marshal product: %w", err)
	}

	c := p.Client
	res, err := c.Index(p.Index, bytes.NewReader(body),
		c.Index.WithContext(ctx),
		c.Index.WithDocumentID(prod.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("es: index product: %w", err)
	}
	defer res.Body.Close()
	return responseError("index product", res.IsError(), res.Status(), res.Body)
}

func (p *Products) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	c := p.Client
	res, err := c.Delete(p.Index, id.String(), c.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete product: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError("delete product", res.IsError(), res.Status(), res.Body)
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns the total hit count and the ids of one page, best match first.
func (p *Products) Search(ctx context.Context, q string, offset, limit int) (int64, []uuid.UUID, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "description", "brand", "features"},
				"fuzziness": "AUTO",
			},
		},
		"_source": false,
	}
	body, err := json.Marshal(query)
	if err != nil {
		return 0, nil, err
	}

	c := p.Client
	res, err := c.Search(
		c.Search.WithContext(ctx),
		c.Search.WithIndex(p.Index),
		c.Search.WithBody(bytes.NewReader(body)),
		c.Search.WithFrom(offset),
		c.Search.WithSize(limit),
		c.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if err := responseError("search", res.IsError(), res.Status(), res.Body); err != nil {
		return 0, nil, err
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return 0, nil, fmt.Errorf("es: decode search: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(sr.Hits.Hits))
	for _, h := range sr.Hits.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return sr.Hits.Total.Value, ids, nil
}

func responseError(op string, isErr bool, status string, body io.Reader) error {
	if !isErr {
		return nil
	}
	b, _ := io.ReadAll(body)
	return fmt.Errorf("es: %s returned %s: %s", op, status, b)
}
