package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/camera_shop/internal/models"
	"github.com/Skotchmaster/camera_shop/internal/mykafka"
	"github.com/Skotchmaster/camera_shop/internal/repo"
	"github.com/Skotchmaster/camera_shop/internal/testutil"
	"github.com/Skotchmaster/camera_shop/internal/transport"
)

func ptr[T any](v T) *T { return &v }

func TestCatalogService_ListProducts_KeywordAndPages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		testutil.CreateProduct(t, env.DB, fmt.Sprintf("Sony Alpha %02d", i), 100, 1)
	}
	for i := 0; i < 4; i++ {
		testutil.CreateProduct(t, env.DB, fmt.Sprintf("Canon EOS %02d", i), 100, 1)
	}

	page1, err := env.Catalog.ListProducts(ctx, "sony", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page1.Page)
	assert.Equal(t, 2, page1.Pages)
	assert.Len(t, page1.Products, 12)
	for _, p := range page1.Products {
		assert.Contains(t, p.Slug, "sony")
	}

	page2, err := env.Catalog.ListProducts(ctx, "SONY", 2)
	require.NoError(t, err)
	assert.Len(t, page2.Products, 3)

	all, err := env.Catalog.ListProducts(ctx, "", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, all.Pages)
}

func TestCatalogService_ListProducts_HugePageIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateProduct(t, env.DB, "Ricoh GR III", 899, 1)

	got, err := env.Catalog.ListProducts(context.Background(), "", math.MaxInt)
	require.NoError(t, err)
	assert.Empty(t, got.Products)
	assert.Equal(t, 1, got.Pages)
}

func TestCatalogService_ListProducts_EscapesLikeWildcards(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateProduct(t, env.DB, "Leica Q3", 5000, 1)
	testutil.CreateProduct(t, env.DB, "Leica 100% Edition", 9000, 1)

	got, err := env.Catalog.ListProducts(context.Background(), "100%", 1)
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Leica 100% Edition", got.Products[0].Name)

	got, err = env.Catalog.ListProducts(context.Background(), "_", 1)
	require.NoError(t, err)
	assert.Empty(t, got.Products)
}

func TestCatalogService_SearchProducts_FallsBackWithoutIndex(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateProduct(t, env.DB, "Nikon Z8", 4000, 1)

	got, err := env.Catalog.SearchProducts(context.Background(), "nikon", 1)
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
}

func TestCatalogService_CreateAndUpdate_SlugFollowsName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := testutil.CreateUser(t, env.DB, "admin@example.com", models.RoleAdmin)

	p, err := env.Catalog.CreateProduct(ctx, admin.ID, transport.CreateProductRequest{
		Name: "Sony A7 IV", Price: ptr(2499.99), Description: "Full frame", Category: "mirrorless", Brand: "sony", Stock: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "sony-a7-iv", p.Slug)

	updated, err := env.Catalog.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{Stock: ptr(7)})
	require.NoError(t, err)
	assert.Equal(t, "sony-a7-iv", updated.Slug)
	assert.Equal(t, 7, updated.Stock)
	assert.Equal(t, 2499.99, updated.Price)

	renamed, err := env.Catalog.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{Name: ptr("Sony A7R V")})
	require.NoError(t, err)
	assert.Equal(t, "sony-a7r-v", renamed.Slug)

	stored, err := env.Catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "sony-a7r-v", stored.Slug)
	assert.Equal(t, 7, stored.Stock)

	types := []string{}
	for _, e := range env.Events.Events(mykafka.TopicProducts) {
		types = append(types, e.Event["type"].(string))
	}
	assert.Equal(t, []string{"product_created", "product_updated", "product_updated"}, types)
}

func TestCatalogService_CreateProduct_DuplicateSlugConflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := transport.CreateProductRequest{Name: "GoPro Hero 12", Price: ptr(399.0), Description: "x", Category: "action", Brand: "other"}

	_, err := env.Catalog.CreateProduct(ctx, uuid.New(), req)
	require.NoError(t, err)

	req.Name = "GoPro  HERO-12"
	_, err = env.Catalog.CreateProduct(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCatalogService_UpdateAndDelete_Missing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Catalog.UpdateProduct(ctx, uuid.New(), transport.PatchProductRequest{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.Catalog.DeleteProduct(ctx, uuid.New()), ErrNotFound)
	_, err = env.Catalog.GetProduct(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, env.DB, "DJI Mini 4 Pro", 759, 3)

	require.NoError(t, env.Catalog.DeleteProduct(ctx, p.ID))
	_, err := env.Catalog.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	events := env.Events.Events(mykafka.TopicProducts)
	require.Len(t, events, 1)
	assert.Equal(t, "product_deleted", events[0].Event["type"])
}

func TestCatalogService_AddReview_OncePerUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, env.DB, "Fujifilm X-T5", 1699, 2)
	ann := testutil.CreateUser(t, env.DB, "ann@example.com", models.RoleUser)
	bob := testutil.CreateUser(t, env.DB, "bob@example.com", models.RoleUser)

	require.NoError(t, env.Catalog.AddReview(ctx, p.ID, Caller{ID: ann.ID, Name: ann.Name}, transport.ReviewRequest{Rating: 5, Comment: "great"}))
	require.NoError(t, env.Catalog.AddReview(ctx, p.ID, Caller{ID: bob.ID, Name: bob.Name}, transport.ReviewRequest{Rating: 2, Comment: "meh"}))

	err := env.Catalog.AddReview(ctx, p.ID, Caller{ID: ann.ID, Name: ann.Name}, transport.ReviewRequest{Rating: 1, Comment: "changed my mind"})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	got, err := env.Catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.NumReviews)
	assert.Len(t, got.Reviews, 2)
	assert.InDelta(t, 3.5, got.Rating, 1e-9)
}

func TestCatalogService_AddReview_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, env.DB, "Olympus OM-1", 2199, 2)

	err := env.Catalog.AddReview(ctx, p.ID, Caller{ID: uuid.New()}, transport.ReviewRequest{Rating: 6, Comment: "x"})
	assert.ErrorIs(t, err, ErrValidation)

	err = env.Catalog.AddReview(ctx, uuid.New(), Caller{ID: uuid.New()}, transport.ReviewRequest{Rating: 4, Comment: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogService_TopProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ratings := []float64{1, 4.5, 3, 5, 2}
	for i, r := range ratings {
		p := testutil.CreateProduct(t, env.DB, fmt.Sprintf("Camera %d", i), 10, 1)
		require.NoError(t, env.DB.Model(p).UpdateColumn("rating", r).Error)
	}

	top, err := env.Catalog.TopProducts(ctx)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []float64{5, 4.5, 3}, []float64{top[0].Rating, top[1].Rating, top[2].Rating})
}

func TestCatalogService_UpdateProduct_KeepsConcurrentStockAndRating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, env.DB, "Sony A7C II", 2199, 5)
	buyer := testutil.CreateUser(t, env.DB, "ann@example.com", models.RoleUser)
	r := repo.New(env.DB)

	// Sell two units and land a review right after UpdateProduct has read the row.
	fired := false
	require.NoError(t, env.DB.Callback().Query().After("gorm:query").Register("test:sell_after_read", func(db *gorm.DB) {
		if fired || db.Statement.Table != "products" {
			return
		}
		fired = true
		ok, err := r.DecrementStock(ctx, p.ID, 2)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, r.CreateReview(ctx, &models.Review{ProductID: p.ID, UserID: buyer.ID, Name: buyer.Name, Rating: 4, Comment: "sharp"}))
		require.NoError(t, r.RecomputeRating(ctx, p.ID))
	}))

	got, err := env.Catalog.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{Description: ptr("new copy"), Name: ptr("Sony A7C 2")})
	require.NoError(t, err)
	require.True(t, fired)

	var stored models.Product
	require.NoError(t, env.DB.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, 3, stored.Stock)
	assert.Equal(t, 1, stored.NumReviews)
	assert.Equal(t, 4.0, stored.Rating)
	assert.Equal(t, "new copy", stored.Description)
	assert.Equal(t, "sony-a7c-2", stored.Slug)

	assert.Equal(t, 3, got.Stock)
	assert.Equal(t, 1, got.NumReviews)
}

func TestCatalogService_UpdateProduct_ExplicitStockIsWritten(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := testutil.CreateProduct(t, env.DB, "Canon R50", 679, 5)

	got, err := env.Catalog.UpdateProduct(ctx, p.ID, transport.PatchProductRequest{Stock: ptr(9), IsFeatured: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)
	assert.Equal(t, "canon-r50", got.Slug)
	assert.Equal(t, 9, testutil.Stock(t, env.DB, p))
}
