package service

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/utafrali/EcommerceGo/storefront/internal/apiclient"
	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/normalize"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
	"github.com/utafrali/EcommerceGo/storefront/pkg/validator"
)

// Cart failure messages.
const (
	MsgFetchCart      = "Failed to fetch cart"
	MsgAddToCart      = "Failed to add to cart"
	MsgUpdateQuantity = "Failed to update quantity"
	MsgRemoveItem     = "Failed to remove item"
	MsgClearCart      = "Failed to clear cart"
)

// DefaultShippingFee is the flat fee charged on a non-empty cart.
const DefaultShippingFee = 30000

// AddToCartInput is one line to add.
type AddToCartInput struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

type addCartItemRequest struct {
	SneakerID string `json:"sneakerId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartState is a snapshot of the cart store with its derived totals.
type CartState struct {
	Items   []domain.CartItem `json:"items"`
	Totals  domain.Totals     `json:"totals"`
	Loading bool              `json:"loading"`
	Error   string            `json:"error,omitempty"`
}

// CartService mirrors the server-owned cart. Only quantity changes are
// applied optimistically; everything else refetches.
type CartService struct {
	api         API
	logger      *slog.Logger
	shippingFee float64

	mu      sync.RWMutex
	items   []domain.CartItem
	loading bool
	err     string
}

// NewCartService creates the cart store.
func NewCartService(api API, shippingFee float64, logger *slog.Logger) *CartService {
	if shippingFee <= 0 {
		shippingFee = DefaultShippingFee
	}
	return &CartService{
		api:         api,
		logger:      logger,
		shippingFee: shippingFee,
		items:       []domain.CartItem{},
	}
}

// State returns a copy of the cart with totals computed now.
func (s *CartService) State() CartState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CartState{
		Items:   domain.CloneCartItems(s.items),
		Totals:  domain.ComputeTotals(s.items, s.shippingFee),
		Loading: s.loading,
		Error:   s.err,
	}
}

// Totals derives the money figures from the current lines.
func (s *CartService) Totals() domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ComputeTotals(s.items, s.shippingFee)
}

// FindLine returns the line for productID in size, if any.
func (s *CartService) FindLine(productID, size string) (domain.CartItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := domain.FindLine(s.items, productID, size); i >= 0 {
		return domain.CloneCartItems(s.items[i : i+1])[0], true
	}
	return domain.CartItem{}, false
}

func (s *CartService) start() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *CartService) fail(ctx context.Context, op string, err error, fallback string) {
	logger.WithContext(ctx, s.logger).WarnContext(ctx, "cart operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	s.mu.Lock()
	s.loading = false
	s.err = apperrors.Message(err, fallback)
	s.mu.Unlock()
}

// FetchCart replaces the lines with the server's cart.
func (s *CartService) FetchCart(ctx context.Context) {
	s.start()

	root, err := get(ctx, s.api, "/cart", nil)
	if err != nil {
		s.fail(ctx, "fetch", err, MsgFetchCart)
		return
	}

	items := normalize.CartItems(root)
	s.mu.Lock()
	s.items = items
	s.loading = false
	s.mu.Unlock()

	logger.WithContext(ctx, s.logger).DebugContext(ctx, "cart fetched", slog.Int("lines", len(items)))
}

// AddToCart posts a line and then refetches the whole cart so server-side
// pricing and merging of duplicate lines are reflected.
func (s *CartService) AddToCart(ctx context.Context, in AddToCartInput) {
	if err := validator.Validate(in); err != nil {
		s.mu.Lock()
		s.err = validationMessage(err, MsgAddToCart)
		s.mu.Unlock()
		return
	}

	s.start()
	req := addCartItemRequest{SneakerID: in.ProductID, Size: in.Size, Quantity: in.Quantity}
	if _, err := call(ctx, s.api, http.MethodPost, "/cart/items", req); err != nil {
		s.fail(ctx, "add", err, MsgAddToCart)
		return
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "cart item added",
		slog.String("product_id", in.ProductID),
		slog.String("size", in.Size),
		slog.Int("quantity", in.Quantity),
	)
	s.FetchCart(ctx)
}

// UpdateQuantity sets a line's quantity, clamped to at least one. The local
// line changes immediately; the cart is refetched afterwards whether or not
// the server accepted the change.
func (s *CartService) UpdateQuantity(ctx context.Context, itemID string, qty int) {
	qty = domain.ClampQuantity(qty)

	s.mu.Lock()
	if i := domain.FindItem(s.items, itemID); i >= 0 {
		s.items[i].Quantity = qty
	}
	s.err = ""
	s.mu.Unlock()

	path := "/cart/items/" + apiclient.PathSegment(itemID)
	if _, err := call(ctx, s.api, http.MethodPut, path, updateQuantityRequest{Quantity: qty}); err != nil {
		s.FetchCart(ctx)
		s.fail(ctx, "update_quantity", err, MsgUpdateQuantity)
		return
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "cart quantity updated",
		slog.String("item_id", itemID),
		slog.Int("quantity", qty),
	)
	s.FetchCart(ctx)
}

// Increment raises a line's quantity by one.
func (s *CartService) Increment(ctx context.Context, itemID string) {
	qty, ok := s.quantityOf(itemID)
	if !ok {
		return
	}
	s.UpdateQuantity(ctx, itemID, qty+1)
}

// Decrement lowers a line's quantity by one. It is a no-op at one.
func (s *CartService) Decrement(ctx context.Context, itemID string) {
	qty, ok := s.quantityOf(itemID)
	if !ok || qty <= domain.MinQuantity {
		return
	}
	s.UpdateQuantity(ctx, itemID, qty-1)
}

func (s *CartService) quantityOf(itemID string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := domain.FindItem(s.items, itemID); i >= 0 {
		return s.items[i].Quantity, true
	}
	return 0, false
}

// RemoveFromCart deletes a line and refetches.
func (s *CartService) RemoveFromCart(ctx context.Context, itemID string) {
	s.start()
	if _, err := call(ctx, s.api, http.MethodDelete, "/cart/items/"+apiclient.PathSegment(itemID), nil); err != nil {
		s.fail(ctx, "remove", err, MsgRemoveItem)
		return
	}

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "cart item removed", slog.String("item_id", itemID))
	s.FetchCart(ctx)
}

// ClearCart empties the cart on the server, then locally.
func (s *CartService) ClearCart(ctx context.Context) {
	s.start()
	if _, err := call(ctx, s.api, http.MethodDelete, "/cart", nil); err != nil {
		s.fail(ctx, "clear", err, MsgClearCart)
		return
	}

	s.mu.Lock()
	s.items = []domain.CartItem{}
	s.loading = false
	s.mu.Unlock()

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "cart cleared")
}

// Reset drops the local cart without contacting the server.
func (s *CartService) Reset() {
	s.mu.Lock()
	s.items = []domain.CartItem{}
	s.loading = false
	s.err = ""
	s.mu.Unlock()
}

// HandleSessionEvent refetches the cart when a session starts and drops it
// when the session ends.
func (s *CartService) HandleSessionEvent(ctx context.Context, e domain.SessionEvent) error {
	if e.Type.Active() {
		s.FetchCart(ctx)
		return nil
	}
	s.Reset()
	return nil
}
