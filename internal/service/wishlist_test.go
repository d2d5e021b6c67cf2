package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/session"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

func newWishlistService(t *testing.T) (*WishlistService, *fakeAPI) {
	t.Helper()
	api := newFakeAPI(t)
	return NewWishlistService(api.client(session.NewHolder()), logger.Discard()), api
}

func productIDs(items []domain.WishlistItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ProductID)
	}
	return out
}

// assertIndexMatchesList checks that the index keys are exactly the list's
// product IDs.
func assertIndexMatchesList(t *testing.T, state WishlistState) {
	t.Helper()
	want := make(map[string]bool, len(state.Items))
	for _, it := range state.Items {
		want[it.ProductID] = true
	}
	assert.Equal(t, want, state.Index)
}

func TestFetchWishlist_Normalizes(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodGet, "/wishlist", http.StatusOK, wishlistJSON)

	svc.FetchWishlist(context.Background())

	state := svc.State()
	require.Len(t, state.Items, 2)
	assert.Equal(t, domain.WishlistItem{ProductID: "p1", WishlistItemID: "w1", Name: "Air Zoom", Price: 2500000}, state.Items[0])
	assert.Equal(t, "p2", state.Items[1].ProductID)
	assert.Equal(t, "Ultraboost", state.Items[1].Name)
	assert.Equal(t, float64(3000000), state.Items[1].Price)
	assertIndexMatchesList(t, state)
	assert.True(t, svc.IsMember("p2"))
	assert.False(t, svc.IsMember("p3"))
}

func TestFetchWishlist_Dedupes(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodGet, "/wishlist", http.StatusOK, `{"items":[
		{"productId":"p1","name":"old"},
		{"productId":"p2"},
		{"productId":"p1","name":"new"},
		{"name":"orphan"}
	]}`)

	svc.FetchWishlist(context.Background())

	state := svc.State()
	assert.Equal(t, []string{"p1", "p2"}, productIDs(state.Items))
	assert.Equal(t, "new", state.Items[0].Name)
	assertIndexMatchesList(t, state)
}

func TestFetchWishlist_FailureUsesFixedMessage(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodGet, "/wishlist", http.StatusOK, wishlistJSON, fakeResponse{http.StatusInternalServerError, `{"message":"db down"}`})
	ctx := context.Background()

	svc.FetchWishlist(ctx)
	svc.FetchWishlist(ctx)

	state := svc.State()
	assert.Equal(t, MsgFetchWishlist, state.Error)
	assert.Len(t, state.Items, 2)
	assert.False(t, state.Loading)
}

func TestAddToWishlist_TwiceMakesOneCall(t *testing.T) {
	svc, api := newWishlistService(t)
	ctx := context.Background()
	item := domain.WishlistItem{ProductID: "p9", Name: "Gel"}

	require.NoError(t, svc.AddToWishlist(ctx, item))
	require.NoError(t, svc.AddToWishlist(ctx, item))

	assert.Equal(t, 1, api.count(http.MethodPost, "/wishlist/items/p9"))
	state := svc.State()
	assert.Equal(t, []string{"p9"}, productIDs(state.Items))
	assertIndexMatchesList(t, state)
}

func TestAddToWishlist_ConcurrentAddsMakeOneCall(t *testing.T) {
	svc, api := newWishlistService(t)
	item := domain.WishlistItem{ProductID: "p9"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.AddToWishlist(context.Background(), item))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, api.count(http.MethodPost, "/wishlist/items/p9"))
	assert.Len(t, svc.State().Items, 1)
}

func TestAddToWishlist_SendsNoBody(t *testing.T) {
	svc, api := newWishlistService(t)

	require.NoError(t, svc.AddToWishlist(context.Background(), domain.WishlistItem{ProductID: "p9"}))
	assert.Nil(t, api.last(http.MethodPost, "/wishlist/items/p9").body)
}

func TestAddToWishlist_FailureRollsBack(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodGet, "/wishlist", http.StatusOK, wishlistJSON)
	api.on(http.MethodPost, "/wishlist/items/p9", http.StatusConflict, `{"message":"Already saved"}`)
	ctx := context.Background()
	svc.FetchWishlist(ctx)

	err := svc.AddToWishlist(ctx, domain.WishlistItem{ProductID: "p9"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	state := svc.State()
	assert.Equal(t, []string{"p1", "p2"}, productIDs(state.Items))
	assertIndexMatchesList(t, state)
	assert.Equal(t, MsgAddToWishlist, state.Error)
	assert.False(t, state.Loading)
}

func TestAddToWishlist_PlainTextSuccessKeepsEntry(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodPost, "/wishlist/items/p7", http.StatusCreated, `Created`)

	err := svc.AddToWishlist(context.Background(), domain.WishlistItem{ProductID: "p7", Name: "Gel Kayano"})

	require.NoError(t, err)
	assert.True(t, svc.IsMember("p7"))
	item, ok := svc.GetByID("p7")
	require.True(t, ok)
	assert.Equal(t, "Gel Kayano", item.Name)
	state := svc.State()
	assertIndexMatchesList(t, state)
	assert.Empty(t, state.Error)
	assert.False(t, state.Loading)
}

func TestAddToWishlist_RequiresProductID(t *testing.T) {
	svc, api := newWishlistService(t)

	err := svc.AddToWishlist(context.Background(), domain.WishlistItem{Name: "nameless"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Empty(t, svc.State().Items)
	assert.Zero(t, api.count(http.MethodPost, "/wishlist/items/"))
}

func TestAddToWishlist_ReconcilesServerEntry(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodPost, "/wishlist/items/p9", http.StatusCreated,
		`{"data":{"item":{"_id":"w9","productId":"p9","imageUrl":"p9.jpg","price":1200000}}}`)

	require.NoError(t, svc.AddToWishlist(context.Background(), domain.WishlistItem{ProductID: "p9", Name: "Gel"}))

	got, ok := svc.GetByID("p9")
	require.True(t, ok)
	assert.Equal(t, domain.WishlistItem{ProductID: "p9", WishlistItemID: "w9", Name: "Gel", ImageURL: "p9.jpg", Price: 1200000}, got)
}

func TestAddToWishlist_AdoptsCanonicalProductID(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodPost, "/wishlist/items/slug-9", http.StatusCreated,
		`{"data":{"_id":"w9","product":{"_id":"p9","name":"Gel"}}}`)

	require.NoError(t, svc.AddToWishlist(context.Background(), domain.WishlistItem{ProductID: "slug-9"}))

	state := svc.State()
	assert.Equal(t, []string{"p9"}, productIDs(state.Items))
	assertIndexMatchesList(t, state)
	assert.False(t, svc.IsMember("slug-9"))
	assert.Equal(t, "Gel", state.Items[0].Name)
}

func TestRemoveFromWishlist(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodGet, "/wishlist", http.StatusOK, wishlistJSON)
	ctx := context.Background()
	svc.FetchWishlist(ctx)

	svc.RemoveFromWishlist(ctx, "p1")

	assert.Equal(t, 1, api.count(http.MethodDelete, "/wishlist/items/p1"))
	assert.Zero(t, api.count(http.MethodDelete, "/wishlist/items/w1"))
	state := svc.State()
	assert.Equal(t, []string{"p2"}, productIDs(state.Items))
	assertIndexMatchesList(t, state)
	assert.Empty(t, state.Error)
}

func TestRemoveFromWishlist_PlainTextSuccessNoRetry(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodGet, "/wishlist", http.StatusOK, wishlistJSON)
	api.on(http.MethodDelete, "/wishlist/items/p1", http.StatusOK, `Deleted`)
	ctx := context.Background()
	svc.FetchWishlist(ctx)

	svc.RemoveFromWishlist(ctx, "p1")

	assert.Equal(t, 1, api.count(http.MethodDelete, "/wishlist/items/p1"))
	assert.Zero(t, api.count(http.MethodDelete, "/wishlist/items/w1"))
	state := svc.State()
	assert.Equal(t, []string{"p2"}, productIDs(state.Items))
	assert.Empty(t, state.Error)
}

func TestRemoveFromWishlist_FallsBackToItemID(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodGet, "/wishlist", http.StatusOK, wishlistJSON)
	api.on(http.MethodDelete, "/wishlist/items/p1", http.StatusNotFound, `{"message":"No such product"}`)
	ctx := context.Background()
	svc.FetchWishlist(ctx)

	svc.RemoveFromWishlist(ctx, "p1")

	assert.Equal(t, 1, api.count(http.MethodDelete, "/wishlist/items/w1"))
	state := svc.State()
	assert.Equal(t, []string{"p2"}, productIDs(state.Items))
	assert.Empty(t, state.Error)
}

func TestRemoveFromWishlist_BothFailRestoresPosition(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodGet, "/wishlist", http.StatusOK, wishlistJSON)
	api.on(http.MethodDelete, "/wishlist/items/p1", http.StatusInternalServerError, `{}`)
	api.on(http.MethodDelete, "/wishlist/items/w1", http.StatusInternalServerError, `{}`)
	ctx := context.Background()
	svc.FetchWishlist(ctx)

	svc.RemoveFromWishlist(ctx, "p1")

	state := svc.State()
	assert.Equal(t, []string{"p1", "p2"}, productIDs(state.Items))
	assert.Equal(t, "w1", state.Items[0].WishlistItemID)
	assertIndexMatchesList(t, state)
	assert.Equal(t, MsgRemoveFromWishlist, state.Error)
	assert.False(t, state.Loading)
}

func TestRemoveFromWishlist_NoItemIDNoRetry(t *testing.T) {
	svc, api := newWishlistService(t)
	require.NoError(t, svc.AddToWishlist(context.Background(), domain.WishlistItem{ProductID: "p9"}))
	api.on(http.MethodDelete, "/wishlist/items/p9", http.StatusInternalServerError, `{}`)

	svc.RemoveFromWishlist(context.Background(), "p9")

	assert.Equal(t, 1, api.count(http.MethodDelete, "/wishlist/items/p9"))
	assert.True(t, svc.IsMember("p9"))
	assert.Equal(t, MsgRemoveFromWishlist, svc.State().Error)
}

func TestClearWishlist(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodGet, "/wishlist", http.StatusOK, wishlistJSON)
	api.on(http.MethodDelete, "/wishlist", http.StatusServiceUnavailable, `{"error":{"message":"maintenance"}}`, fakeResponse{http.StatusOK, `{}`})
	ctx := context.Background()
	svc.FetchWishlist(ctx)

	svc.ClearWishlist(ctx)
	assert.Len(t, svc.State().Items, 2, "kept until the server confirms")
	assert.Equal(t, "maintenance", svc.State().Error)

	svc.ClearWishlist(ctx)
	state := svc.State()
	assert.Empty(t, state.Items)
	assert.Empty(t, state.Index)
	assert.Empty(t, state.Error)
}

func TestWishlistService_HandleSessionEvent(t *testing.T) {
	svc, api := newWishlistService(t)
	api.on(http.MethodGet, "/wishlist", http.StatusOK, wishlistJSON)
	ctx := context.Background()

	require.NoError(t, svc.HandleSessionEvent(ctx, domain.SessionEvent{Type: domain.SessionRestored}))
	assert.Len(t, svc.State().Items, 2)

	require.NoError(t, svc.HandleSessionEvent(ctx, domain.SessionEvent{Type: domain.SessionLoggedOut}))
	state := svc.State()
	assert.Empty(t, state.Items)
	assert.NotNil(t, state.Items)
	assert.Empty(t, state.Index)
}
