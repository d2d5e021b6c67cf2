package service

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/normalize"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

// Product fetch failure messages.
const (
	MsgFetchProducts   = "Failed to fetch products"
	MsgFetchFeatured   = "Failed to fetch featured products"
	MsgFetchArrivals   = "Failed to fetch arrivals"
	MsgFetchByGender   = "Failed to fetch by gender"
	MsgFetchByCategory = "Failed to fetch by category"
	MsgFetchCategories = "Failed to fetch categories"
	MsgApplyFilters    = "Failed to apply filters"
)

// DefaultRelatedLimit is how many related products are shown by default.
const DefaultRelatedLimit = 4

// ProductState is a snapshot of the products store.
type ProductState struct {
	Products    []domain.Product `json:"products"`
	AllProducts []domain.Product `json:"allProducts"`
	Categories  []string         `json:"categories"`
	Loading     bool             `json:"loading"`
	Error       string           `json:"error,omitempty"`
}

// ProductDetail is a product together with its related products.
type ProductDetail struct {
	Product            domain.Product   `json:"product"`
	Related            []domain.Product `json:"related"`
	FirstAvailableSize string           `json:"firstAvailableSize"`
}

// ProductService holds the visible product list, the full catalog snapshot
// and the derived categories.
type ProductService struct {
	api          API
	logger       *slog.Logger
	relatedLimit int

	mu          sync.RWMutex
	products    []domain.Product
	allProducts []domain.Product
	categories  []string
	loading     bool
	err         string
}

// NewProductService creates the products store.
func NewProductService(api API, relatedLimit int, logger *slog.Logger) *ProductService {
	if relatedLimit <= 0 {
		relatedLimit = DefaultRelatedLimit
	}
	return &ProductService{
		api:          api,
		logger:       logger,
		relatedLimit: relatedLimit,
		products:     []domain.Product{},
		allProducts:  []domain.Product{},
		categories:   []string{},
	}
}

// State returns a copy of the store.
func (s *ProductService) State() ProductState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ProductState{
		Products:    append([]domain.Product{}, s.products...),
		AllProducts: append([]domain.Product{}, s.allProducts...),
		Categories:  append([]string{}, s.categories...),
		Loading:     s.loading,
		Error:       s.err,
	}
}

// fetch loads a product list and hands it to apply under the lock. A failure
// records the message and leaves every list untouched.
func (s *ProductService) fetch(ctx context.Context, op string, query url.Values, path, fallback string, apply func([]domain.Product)) {
	log := logger.WithContext(ctx, s.logger)

	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	root, err := get(ctx, s.api, path, query)
	if err != nil {
		log.WarnContext(ctx, "product fetch failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		s.mu.Lock()
		s.loading = false
		s.err = apperrors.Message(err, fallback)
		s.mu.Unlock()
		return
	}

	products := normalize.Products(root)
	s.mu.Lock()
	apply(products)
	s.loading = false
	s.mu.Unlock()

	log.DebugContext(ctx, "products fetched",
		slog.String("op", op),
		slog.Int("count", len(products)),
	)
}

func (s *ProductService) replaceCatalog(products []domain.Product) {
	s.allProducts = products
	s.categories = domain.Categories(products)
}

// FetchAll loads the full catalog into the visible list and the snapshot.
func (s *ProductService) FetchAll(ctx context.Context) {
	s.fetch(ctx, "all", nil, "/products", MsgFetchProducts, func(p []domain.Product) {
		s.products = p
		s.replaceCatalog(append([]domain.Product(nil), p...))
	})
}

// FetchFeatured shows featured products.
func (s *ProductService) FetchFeatured(ctx context.Context) {
	s.fetch(ctx, "featured", url.Values{"featured": {"true"}}, "/products", MsgFetchFeatured, s.replaceVisible)
}

// FetchArrivals shows new arrivals.
func (s *ProductService) FetchArrivals(ctx context.Context) {
	s.fetch(ctx, "arrivals", nil, "/products/new/arrivals", MsgFetchArrivals, s.replaceVisible)
}

// FetchByGender shows products for one gender.
func (s *ProductService) FetchByGender(ctx context.Context, gender string) {
	s.fetch(ctx, "gender", url.Values{"gender": {gender}}, "/products", MsgFetchByGender, s.replaceVisible)
}

// FetchByCategory shows products of one category.
func (s *ProductService) FetchByCategory(ctx context.Context, category string) {
	s.fetch(ctx, "category", url.Values{"category": {category}}, "/products", MsgFetchByCategory, s.replaceVisible)
}

// FetchCategories refreshes the catalog snapshot and categories without
// touching the visible list.
func (s *ProductService) FetchCategories(ctx context.Context) {
	s.fetch(ctx, "categories", nil, "/products", MsgFetchCategories, s.replaceCatalog)
}

// ApplyFilters asks the server for a filtered list.
func (s *ProductService) ApplyFilters(ctx context.Context, f domain.Filters) {
	s.fetch(ctx, "filters", f.Query(), "/products", MsgApplyFilters, s.replaceVisible)
}

// ClearFilters reloads the full catalog.
func (s *ProductService) ClearFilters(ctx context.Context) {
	s.FetchAll(ctx)
}

func (s *ProductService) replaceVisible(products []domain.Product) {
	s.products = products
}

// Search filters the local snapshot by name or brand. A blank query shows
// the whole snapshot.
func (s *ProductService) Search(query string) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = domain.Search(s.allProducts, query)
	return append([]domain.Product{}, s.products...)
}

// GetByID looks a product up in the snapshot.
func (s *ProductService) GetByID(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.allProducts {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Related returns up to limit snapshot products sharing the category or
// brand of id. A non-positive limit uses the configured default.
func (s *ProductService) Related(id string, limit int) []domain.Product {
	if limit <= 0 {
		limit = s.relatedLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.allProducts {
		if p.ID == id {
			return domain.Related(s.allProducts, p, limit)
		}
	}
	return []domain.Product{}
}

// Detail returns a product with its related products and default size.
func (s *ProductService) Detail(id string) (*ProductDetail, error) {
	p, ok := s.GetByID(id)
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return &ProductDetail{
		Product:            p,
		Related:            s.Related(id, 0),
		FirstAvailableSize: p.FirstAvailableSize(),
	}, nil
}

// HandleSessionEvent refreshes the catalog when a session starts.
func (s *ProductService) HandleSessionEvent(ctx context.Context, e domain.SessionEvent) error {
	if e.Type.Active() {
		s.FetchAll(ctx)
	}
	return nil
}
