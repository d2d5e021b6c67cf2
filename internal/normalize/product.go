package normalize

import (
	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
)

var productListPaths = [][]string{
	{"data", "sneakers"},
	{"data", "products"},
	{"sneakers"},
	{"products"},
	{"data"},
	{},
}

// Product normalizes a catalog entry. It reports false for non-objects.
//
//	id       _id, id
//	brand    brand string, brand.name
//	imageUrl imageUrl, primary image, first image
//	sizes    plain values (stock untracked) or {size, stock} objects
func Product(raw any) (domain.Product, bool) {
	m, ok := Object(raw)
	if !ok {
		return domain.Product{}, false
	}

	p := domain.Product{
		ID:          FirstField(m, "_id", "id"),
		Name:        Field(m, "name"),
		Brand:       brand(m["brand"]),
		Description: Field(m, "description"),
		ImageURL:    imageURL(m),
		Colors:      colors(m["colors"]),
		Sizes:       sizes(m["sizes"]),
		Category:    Field(m, "category"),
		Gender:      Field(m, "gender"),
		IsFeatured:  Bool(m["isFeatured"]),
	}
	p.Price, _ = Number(m["price"])
	return p, true
}

// Products extracts and normalizes a product list. Unknown shapes yield an
// empty list.
func Products(root any) []domain.Product {
	raw := FirstArray(root, productListPaths...)
	out := make([]domain.Product, 0, len(raw))
	for _, r := range raw {
		if p, ok := Product(r); ok {
			out = append(out, p)
		}
	}
	return out
}

func brand(v any) string {
	if m, ok := Object(v); ok {
		return Field(m, "name")
	}
	return String(v)
}

func colors(v any) []domain.Color {
	arr, _ := v.([]any)
	out := make([]domain.Color, 0, len(arr))
	for _, c := range arr {
		m, ok := Object(c)
		if !ok {
			continue
		}
		out = append(out, domain.Color{
			ID:      FirstField(m, "_id", "id"),
			Name:    Field(m, "name"),
			HexCode: Field(m, "hexCode"),
		})
	}
	return out
}

func sizes(v any) []domain.SizeStock {
	arr, _ := v.([]any)
	out := make([]domain.SizeStock, 0, len(arr))
	for _, s := range arr {
		if m, ok := Object(s); ok {
			size := Field(m, "size")
			if size == "" {
				continue
			}
			stock, tracked := Number(m["stock"])
			out = append(out, domain.SizeStock{Size: size, Stock: int(stock), Tracked: tracked})
			continue
		}
		if size := String(s); size != "" {
			out = append(out, domain.SizeStock{Size: size})
		}
	}
	return out
}
