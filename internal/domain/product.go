package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultCategory labels products whose category is missing or blank.
const DefaultCategory = "Other"

// Color is one colourway of a product.
type Color struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	HexCode string `json:"hexCode"`
}

// SizeStock is a purchasable size and how many pairs are left. Tracked is
// false when the API listed the size without stock information.
type SizeStock struct {
	Size    string `json:"size"`
	Stock   int    `json:"stock"`
	Tracked bool   `json:"tracked"`
}

// Product is a catalog entry. Products are read-only on the client and only
// ever replaced wholesale on refetch.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Brand       string      `json:"brand"`
	Price       float64     `json:"price"`
	Description string      `json:"description"`
	ImageURL    string      `json:"imageUrl"`
	Colors      []Color     `json:"colors"`
	Sizes       []SizeStock `json:"sizes"`
	Category    string      `json:"category"`
	Gender      string      `json:"gender"`
	IsFeatured  bool        `json:"isFeatured"`
}

// StockFor returns the stock of the given size, 0 when unknown.
func (p *Product) StockFor(size string) int {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Stock
		}
	}
	return 0
}

// FirstAvailableSize returns the first size with stock left. When no size
// carries stock information the first listed size is returned.
func (p *Product) FirstAvailableSize() string {
	tracked := false
	for _, s := range p.Sizes {
		if s.Tracked {
			tracked = true
			if s.Stock > 0 {
				return s.Size
			}
		}
	}
	if !tracked && len(p.Sizes) > 0 {
		return p.Sizes[0].Size
	}
	return ""
}

// CategoryLabel returns the trimmed category or DefaultCategory.
func (p *Product) CategoryLabel() string {
	if c := strings.TrimSpace(p.Category); c != "" {
		return c
	}
	return DefaultCategory
}

// Categories derives the distinct category labels in first-seen order.
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0)
	for i := range products {
		c := products[i].CategoryLabel()
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Search returns the products whose name or brand contains query,
// case-insensitively. A blank query returns a copy of all products.
func Search(products []Product, query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Product(nil), products...)
	}

	out := make([]Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Brand), q) {
			out = append(out, p)
		}
	}
	return out
}

// Related returns up to limit other products sharing the category or brand
// of target, in catalog order.
func Related(products []Product, target Product, limit int) []Product {
	out := make([]Product, 0, limit)
	for _, p := range products {
		if len(out) >= limit {
			break
		}
		if p.ID == target.ID {
			continue
		}
		if (p.Category != "" && p.Category == target.Category) || (p.Brand != "" && p.Brand == target.Brand) {
			out = append(out, p)
		}
	}
	return out
}

// Filters is a server-side catalog query.
type Filters struct {
	Brands     []string  `json:"brands"`
	Categories []string  `json:"categories"`
	Genders    []string  `json:"genders"`
	Sizes      []string  `json:"sizes"`
	PriceRange []float64 `json:"priceRange"`
	Search     string    `json:"search"`
}

// Query encodes the filters as repeated parameters. The price bounds are only
// sent when PriceRange holds exactly two values; the search text is trimmed
// and omitted when blank.
func (f Filters) Query() url.Values {
	v := url.Values{}
	for _, b := range f.Brands {
		v.Add("brand", b)
	}
	for _, c := range f.Categories {
		v.Add("category", c)
	}
	for _, g := range f.Genders {
		v.Add("gender", g)
	}
	for _, s := range f.Sizes {
		v.Add("size", s)
	}
	if len(f.PriceRange) == 2 {
		v.Add("minPrice", formatPrice(f.PriceRange[0]))
		v.Add("maxPrice", formatPrice(f.PriceRange[1]))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		v.Add("search", s)
	}
	return v
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
