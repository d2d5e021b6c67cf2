package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/session"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

func newProductService(t *testing.T) (*ProductService, *fakeAPI) {
	t.Helper()
	api := newFakeAPI(t)
	return NewProductService(api.client(session.NewHolder()), 0, logger.Discard()), api
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFetchAll_ReplacesListsAndCategories(t *testing.T) {
	svc, api := newProductService(t)
	api.on(http.MethodGet, "/products", http.StatusOK, catalogJSON)

	svc.FetchAll(context.Background())

	state := svc.State()
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(state.Products))
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids(state.AllProducts))
	assert.Equal(t, []string{"Running", "Other", "Lifestyle"}, state.Categories)
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestFetchVariants_ReplaceOnlyVisibleList(t *testing.T) {
	svc, api := newProductService(t)
	api.on(http.MethodGet, "/products", http.StatusOK, catalogJSON, fakeResponse{http.StatusOK, featuredJSON})
	ctx := context.Background()

	svc.FetchAll(ctx)
	svc.FetchFeatured(ctx)

	state := svc.State()
	assert.Equal(t, []string{"p4"}, ids(state.Products))
	assert.Len(t, state.AllProducts, 4)
	assert.Equal(t, "true", api.last(http.MethodGet, "/products").query.Get("featured"))
}

func TestFetchByGenderAndCategory_SendQuery(t *testing.T) {
	svc, api := newProductService(t)
	ctx := context.Background()

	svc.FetchByGender(ctx, "Women")
	assert.Equal(t, "Women", api.last(http.MethodGet, "/products").query.Get("gender"))

	svc.FetchByCategory(ctx, "Running")
	assert.Equal(t, "Running", api.last(http.MethodGet, "/products").query.Get("category"))
}

func TestFetchArrivals(t *testing.T) {
	svc, api := newProductService(t)
	api.on(http.MethodGet, "/products/new/arrivals", http.StatusOK, `{"data":[{"_id":"p9","name":"New"}]}`)

	svc.FetchArrivals(context.Background())
	assert.Equal(t, []string{"p9"}, ids(svc.State().Products))
}

func TestFetchCategories_LeavesVisibleList(t *testing.T) {
	svc, api := newProductService(t)
	api.on(http.MethodGet, "/products/new/arrivals", http.StatusOK, `{"products":[{"_id":"p9"}]}`)
	api.on(http.MethodGet, "/products", http.StatusOK, catalogJSON)
	ctx := context.Background()

	svc.FetchArrivals(ctx)
	svc.FetchCategories(ctx)

	state := svc.State()
	assert.Equal(t, []string{"p9"}, ids(state.Products))
	assert.Len(t, state.AllProducts, 4)
	assert.Equal(t, []string{"Running", "Other", "Lifestyle"}, state.Categories)
}

func TestFetch_FailureKeepsLists(t *testing.T) {
	svc, api := newProductService(t)
	api.on(http.MethodGet, "/products", http.StatusOK, catalogJSON,
		fakeResponse{http.StatusInternalServerError, `{"message":"database unavailable"}`},
		fakeResponse{http.StatusBadGateway, ``},
	)
	ctx := context.Background()

	svc.FetchAll(ctx)
	svc.FetchFeatured(ctx)

	state := svc.State()
	assert.Equal(t, "database unavailable", state.Error)
	assert.False(t, state.Loading)
	assert.Len(t, state.Products, 4)

	svc.FetchByGender(ctx, "Men")
	assert.Equal(t, http.StatusText(http.StatusBadGateway), svc.State().Error)
	assert.Len(t, svc.State().Products, 4)
}

func TestFetch_NetworkFailureUsesFallback(t *testing.T) {
	api := newFakeAPI(t)
	client := api.client(session.NewHolder())
	api.server.Close()

	svc := NewProductService(client, 0, logger.Discard())
	svc.FetchFeatured(context.Background())
	assert.Equal(t, MsgFetchFeatured, svc.State().Error)

	svc.ApplyFilters(context.Background(), domain.Filters{})
	assert.Equal(t, MsgApplyFilters, svc.State().Error)
}

func TestSearch(t *testing.T) {
	svc, api := newProductService(t)
	api.on(http.MethodGet, "/products", http.StatusOK, catalogJSON)
	svc.FetchAll(context.Background())

	got := svc.Search("NIKE")
	assert.Equal(t, []string{"p1", "p4"}, ids(got))
	assert.Equal(t, []string{"p1", "p4"}, ids(svc.State().Products))

	// Blank query restores the exact snapshot regardless of prior filtering.
	svc.Search("  ")
	state := svc.State()
	assert.Equal(t, state.AllProducts, state.Products)
	assert.Equal(t, 1, api.count(http.MethodGet, "/products"))
}

func TestApplyFilters_RepeatedParams(t *testing.T) {
	svc, api := newProductService(t)
	api.on(http.MethodGet, "/products", http.StatusOK, featuredJSON)

	svc.ApplyFilters(context.Background(), domain.Filters{
		Brands:     []string{"Nike", "Adidas"},
		Sizes:      []string{"42"},
		PriceRange: []float64{0, 3000000},
		Search:     " air ",
	})

	q := api.last(http.MethodGet, "/products").query
	assert.Equal(t, []string{"Nike", "Adidas"}, q["brand"])
	assert.Equal(t, []string{"42"}, q["size"])
	assert.Equal(t, "0", q.Get("minPrice"))
	assert.Equal(t, "3000000", q.Get("maxPrice"))
	assert.Equal(t, "air", q.Get("search"))
	assert.Equal(t, []string{"p4"}, ids(svc.State().Products))
}

func TestClearFilters_RefetchesAll(t *testing.T) {
	svc, api := newProductService(t)
	api.on(http.MethodGet, "/products", http.StatusOK, featuredJSON, fakeResponse{http.StatusOK, catalogJSON})
	ctx := context.Background()

	svc.ApplyFilters(ctx, domain.Filters{Brands: []string{"Nike"}})
	svc.ClearFilters(ctx)

	assert.Empty(t, api.last(http.MethodGet, "/products").query)
	assert.Len(t, svc.State().Products, 4)
}

func TestGetByID_RelatedAndDetail(t *testing.T) {
	svc, api := newProductService(t)
	api.on(http.MethodGet, "/products", http.StatusOK, catalogJSON)
	svc.FetchAll(context.Background())

	p, ok := svc.GetByID("p1")
	require.True(t, ok)
	assert.Equal(t, "Air Zoom", p.Name)

	assert.Equal(t, []string{"p2", "p4"}, ids(svc.Related("p1", 0)))
	assert.Equal(t, []string{"p2"}, ids(svc.Related("p1", 1)))
	assert.Empty(t, svc.Related("missing", 0))

	detail, err := svc.Detail("p1")
	require.NoError(t, err)
	assert.Equal(t, "42", detail.FirstAvailableSize)
	assert.Len(t, detail.Related, 2)

	_, err = svc.Detail("missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProductService_HandleSessionEvent(t *testing.T) {
	svc, api := newProductService(t)
	ctx := context.Background()

	require.NoError(t, svc.HandleSessionEvent(ctx, domain.SessionEvent{Type: domain.SessionLoggedOut}))
	assert.Zero(t, api.count(http.MethodGet, "/products"))

	require.NoError(t, svc.HandleSessionEvent(ctx, domain.SessionEvent{Type: domain.SessionRestored}))
	assert.Equal(t, 1, api.count(http.MethodGet, "/products"))
}
