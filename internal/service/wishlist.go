package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/utafrali/EcommerceGo/storefront/internal/apiclient"
	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/normalize"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

// Wishlist failure messages.
const (
	MsgFetchWishlist      = "Failed to fetch wishlist"
	MsgAddToWishlist      = "Failed to add to wishlist"
	MsgRemoveFromWishlist = "Failed to remove from wishlist"
	MsgClearWishlist      = "Failed to clear wishlist"
)

// WishlistState is a snapshot of the wishlist store.
type WishlistState struct {
	Items   []domain.WishlistItem `json:"items"`
	Index   map[string]bool       `json:"index"`
	Loading bool                  `json:"loading"`
	Error   string                `json:"error,omitempty"`
}

// WishlistService keeps the saved products and their membership index.
// Adds and removes are optimistic and rolled back on failure.
type WishlistService struct {
	api    API
	logger *slog.Logger

	mu      sync.RWMutex
	list    *domain.Wishlist
	loading bool
	err     string
}

// NewWishlistService creates the wishlist store.
func NewWishlistService(api API, logger *slog.Logger) *WishlistService {
	return &WishlistService{
		api:    api,
		logger: logger,
		list:   domain.NewWishlist(),
	}
}

// State returns a copy of the store.
func (s *WishlistService) State() WishlistState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.list.Items()
	if items == nil {
		items = []domain.WishlistItem{}
	}
	return WishlistState{
		Items:   items,
		Index:   s.list.Index(),
		Loading: s.loading,
		Error:   s.err,
	}
}

// IsMember reports whether productID is saved.
func (s *WishlistService) IsMember(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.Has(productID)
}

// GetByID returns the saved entry for productID.
func (s *WishlistService) GetByID(productID string) (domain.WishlistItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.Get(productID)
}

// FetchWishlist replaces the list with the server's, de-duplicated by product.
func (s *WishlistService) FetchWishlist(ctx context.Context) {
	log := logger.WithContext(ctx, s.logger)

	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	root, err := get(ctx, s.api, "/wishlist", nil)
	if err != nil {
		log.WarnContext(ctx, "wishlist fetch failed", slog.String("error", err.Error()))
		s.mu.Lock()
		s.loading = false
		s.err = MsgFetchWishlist
		s.mu.Unlock()
		return
	}

	items := normalize.WishlistItems(root)
	s.mu.Lock()
	s.list.Replace(items)
	n := s.list.Len()
	s.loading = false
	s.mu.Unlock()

	log.DebugContext(ctx, "wishlist fetched", slog.Int("items", n))
}

// AddToWishlist saves item. A product that is already saved is a no-op
// without a network call. The entry appears immediately and is removed again
// if the server rejects it; that failure is also returned.
func (s *WishlistService) AddToWishlist(ctx context.Context, item domain.WishlistItem) error {
	log := logger.WithContext(ctx, s.logger)

	if item.ProductID == "" {
		return apperrors.InvalidInput("productId is required")
	}

	s.mu.Lock()
	if !s.list.Add(item) {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	root, err := call(ctx, s.api, http.MethodPost, "/wishlist/items/"+apiclient.PathSegment(item.ProductID), nil)
	if err != nil {
		log.WarnContext(ctx, "wishlist add failed",
			slog.String("product_id", item.ProductID),
			slog.String("error", err.Error()),
		)
		s.mu.Lock()
		s.list.Remove(item.ProductID)
		s.loading = false
		s.err = MsgAddToWishlist
		s.mu.Unlock()
		return fmt.Errorf("add %s to wishlist: %w", item.ProductID, err)
	}

	server, ok := normalize.AddedWishlistItem(root)
	s.mu.Lock()
	if ok {
		s.list.Reconcile(item.ProductID, server)
	}
	s.loading = false
	s.mu.Unlock()

	log.InfoContext(ctx, "wishlist item added", slog.String("product_id", item.ProductID))
	return nil
}

// RemoveFromWishlist drops productID immediately and deletes it on the
// server. When the delete by product ID fails and the entry has a server
// line ID, the delete is retried once by that ID. If both fail the entry is
// put back where it was.
func (s *WishlistService) RemoveFromWishlist(ctx context.Context, productID string) {
	log := logger.WithContext(ctx, s.logger)

	s.mu.Lock()
	removed, pos, had := s.list.Remove(productID)
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	_, err := call(ctx, s.api, http.MethodDelete, "/wishlist/items/"+apiclient.PathSegment(productID), nil)
	if err != nil && had && removed.WishlistItemID != "" {
		log.DebugContext(ctx, "wishlist remove by product id failed, retrying by item id",
			slog.String("product_id", productID),
			slog.String("wishlist_item_id", removed.WishlistItemID),
			slog.String("error", err.Error()),
		)
		_, err = call(ctx, s.api, http.MethodDelete, "/wishlist/items/"+apiclient.PathSegment(removed.WishlistItemID), nil)
	}

	if err != nil {
		log.WarnContext(ctx, "wishlist remove failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		s.mu.Lock()
		if had {
			s.list.InsertAt(removed, pos)
		}
		s.loading = false
		s.err = MsgRemoveFromWishlist
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()

	log.InfoContext(ctx, "wishlist item removed", slog.String("product_id", productID))
}

// ClearWishlist empties the wishlist on the server and then locally.
func (s *WishlistService) ClearWishlist(ctx context.Context) {
	log := logger.WithContext(ctx, s.logger)

	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	if _, err := call(ctx, s.api, http.MethodDelete, "/wishlist", nil); err != nil {
		log.WarnContext(ctx, "wishlist clear failed", slog.String("error", err.Error()))
		s.mu.Lock()
		s.loading = false
		s.err = apperrors.Message(err, MsgClearWishlist)
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.list.Clear()
	s.loading = false
	s.mu.Unlock()

	log.InfoContext(ctx, "wishlist cleared")
}

// Reset drops the local wishlist without contacting the server.
func (s *WishlistService) Reset() {
	s.mu.Lock()
	s.list.Clear()
	s.loading = false
	s.err = ""
	s.mu.Unlock()
}

// HandleSessionEvent refetches the wishlist when a session starts and drops
// it when the session ends.
func (s *WishlistService) HandleSessionEvent(ctx context.Context, e domain.SessionEvent) error {
	if e.Type.Active() {
		s.FetchWishlist(ctx)
		return nil
	}
	s.Reset()
	return nil
}
