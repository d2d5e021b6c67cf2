package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/service"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httputil"
	"github.com/utafrali/EcommerceGo/storefront/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: svc,
		logger:  logger,
	}
}

// AddWishlistItemRequest is the JSON request body for saving a product. The
// display fields are shown until the server answers.
type AddWishlistItemRequest struct {
	ProductID string  `json:"productId" validate:"required"`
	Name      string  `json:"name"`
	ImageURL  string  `json:"imageUrl"`
	Price     float64 `json:"price" validate:"gte=0"`
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.service.State())
}

// FetchWishlist handles POST /api/v1/wishlist/fetch
func (h *WishlistHandler) FetchWishlist(w http.ResponseWriter, r *http.Request) {
	h.service.FetchWishlist(r.Context())
	httputil.WriteData(w, h.service.State())
}

// AddItem handles POST /api/v1/wishlist/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddWishlistItemRequest
	if err := validator.DecodeAndValidate(r.Body, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	item := domain.WishlistItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		ImageURL:  req.ImageURL,
		Price:     req.Price,
	}
	if err := h.service.AddToWishlist(r.Context(), item); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, h.service.State())
}

// GetItem handles GET /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	productID := pathParam(r, "productId")
	item, ok := h.service.GetByID(productID)
	if !ok {
		httputil.WriteError(w, r, apperrors.NotFound("wishlist item", productID), h.logger)
		return
	}

	httputil.WriteData(w, item)
}

// RemoveItem handles DELETE /api/v1/wishlist/items/{productId}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.service.RemoveFromWishlist(r.Context(), pathParam(r, "productId"))
	httputil.WriteData(w, h.service.State())
}

// ClearWishlist handles DELETE /api/v1/wishlist
func (h *WishlistHandler) ClearWishlist(w http.ResponseWriter, r *http.Request) {
	h.service.ClearWishlist(r.Context())
	httputil.WriteData(w, h.service.State())
}
