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

// Catalog views accepted by POST /api/v1/products/fetch/{view}.
const (
	ViewAll        = "all"
	ViewFeatured   = "featured"
	ViewArrivals   = "arrivals"
	ViewCategories = "categories"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// SearchRequest is the JSON request body for a local catalog search.
type SearchRequest struct {
	Query string `json:"query"`
}

// GetState handles GET /api/v1/products
func (h *ProductHandler) GetState(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, h.service.State())
}

// Fetch handles POST /api/v1/products/fetch/{view}
func (h *ProductHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	switch view := pathParam(r, "view"); view {
	case ViewAll:
		h.service.FetchAll(ctx)
	case ViewFeatured:
		h.service.FetchFeatured(ctx)
	case ViewArrivals:
		h.service.FetchArrivals(ctx)
	case ViewCategories:
		h.service.FetchCategories(ctx)
	default:
		httputil.WriteError(w, r, apperrors.InvalidInput("unknown catalog view: "+view), h.logger)
		return
	}

	httputil.WriteData(w, h.service.State())
}

// FetchByGender handles POST /api/v1/products/gender/{gender}
func (h *ProductHandler) FetchByGender(w http.ResponseWriter, r *http.Request) {
	h.service.FetchByGender(r.Context(), pathParam(r, "gender"))
	httputil.WriteData(w, h.service.State())
}

// FetchByCategory handles POST /api/v1/products/category/{category}
func (h *ProductHandler) FetchByCategory(w http.ResponseWriter, r *http.Request) {
	h.service.FetchByCategory(r.Context(), pathParam(r, "category"))
	httputil.WriteData(w, h.service.State())
}

// Search handles POST /api/v1/products/search
func (h *ProductHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := validator.DecodeAndValidate(r.Body, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.service.Search(req.Query)
	httputil.WriteData(w, h.service.State())
}

// ApplyFilters handles POST /api/v1/products/filters
func (h *ProductHandler) ApplyFilters(w http.ResponseWriter, r *http.Request) {
	var req domain.Filters
	if err := validator.DecodeAndValidate(r.Body, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.service.ApplyFilters(r.Context(), req)
	httputil.WriteData(w, h.service.State())
}

// ClearFilters handles DELETE /api/v1/products/filters
func (h *ProductHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	h.service.ClearFilters(r.Context())
	httputil.WriteData(w, h.service.State())
}

// GetProduct handles GET /api/v1/products/{id}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Detail(pathParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, detail)
}
