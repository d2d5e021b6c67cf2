package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/EcommerceGo/storefront/internal/service"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httputil"
	"github.com/utafrali/EcommerceGo/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// UpdateQuantityRequest is the JSON request body for updating a line's quantity.
// Values below one are clamped by the store.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.service.State())
}

// FetchCart handles POST /api/v1/cart/fetch
func (h *CartHandler) FetchCart(w http.ResponseWriter, r *http.Request) {
	h.service.FetchCart(r.Context())
	httputil.WriteData(w, h.service.State())
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req service.AddToCartInput
	if err := validator.DecodeAndValidate(r.Body, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.service.AddToCart(r.Context(), req)
	httputil.WriteData(w, h.service.State())
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{itemId}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r.Body, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.service.UpdateQuantity(r.Context(), pathParam(r, "itemId"), req.Quantity)
	httputil.WriteData(w, h.service.State())
}

// Increment handles POST /api/v1/cart/items/{itemId}/increment
func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.service.Increment(r.Context(), pathParam(r, "itemId"))
	httputil.WriteData(w, h.service.State())
}

// Decrement handles POST /api/v1/cart/items/{itemId}/decrement
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.service.Decrement(r.Context(), pathParam(r, "itemId"))
	httputil.WriteData(w, h.service.State())
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.service.RemoveFromCart(r.Context(), pathParam(r, "itemId"))
	httputil.WriteData(w, h.service.State())
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCart(r.Context())
	httputil.WriteData(w, h.service.State())
}
