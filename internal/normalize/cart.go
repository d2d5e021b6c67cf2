package normalize

import (
	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
)

var cartItemPaths = [][]string{
	{"data", "cart", "items"},
	{"data", "items"},
	{"cart", "items"},
	{"items"},
}

// CartItem normalizes a cart line. It reports false for non-objects.
//
//	id        _id, id
//	product   sneaker, product
//	productId product._id, product.id, productId
//	price     price, product.price, 0
//	imageUrl  product image chain
//
// The product snapshot is only set when the line embeds a product object.
func CartItem(raw any) (domain.CartItem, bool) {
	m, ok := Object(raw)
	if !ok {
		return domain.CartItem{}, false
	}

	item := domain.CartItem{
		ID:   FirstField(m, "_id", "id"),
		Size: Field(m, "size"),
	}
	if q, ok := Number(m["quantity"]); ok {
		item.Quantity = int(q)
	}

	prod, hasProduct := FirstObject(m, []string{"sneaker"}, []string{"product"})
	item.ProductID = FirstField(prod, "_id", "id")
	if item.ProductID == "" {
		item.ProductID = Field(m, "productId")
	}

	if hasProduct {
		price, ok := Number(m["price"])
		if !ok {
			price, _ = Number(prod["price"])
		}
		item.Product = &domain.CartProduct{
			ID:       FirstField(prod, "_id", "id"),
			Name:     Field(prod, "name"),
			Price:    price,
			ImageURL: imageURL(prod),
		}
	}
	return item, true
}

// CartItems extracts and normalizes the lines of a cart response.
func CartItems(root any) []domain.CartItem {
	raw := FirstArray(root, cartItemPaths...)
	out := make([]domain.CartItem, 0, len(raw))
	for _, r := range raw {
		if it, ok := CartItem(r); ok {
			out = append(out, it)
		}
	}
	return out
}
