package normalize

import (
	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
)

var wishlistItemPaths = [][]string{
	{"data", "wishlist", "items"},
	{"data", "items"},
	{"wishlist", "items"},
	{"items"},
}

// WishlistItem normalizes a wishlist entry. It reports false for non-objects.
//
//	product        product, sneaker, productInfo, populated productId
//	productId      productId, product._id, product.id, product.productId
//	wishlistItemId _id, wishlistItemId
//	name           product.name, name
//	imageUrl       imageUrl, product primary image, product first image
//	price          price, product.price, 0
func WishlistItem(raw any) (domain.WishlistItem, bool) {
	m, ok := Object(raw)
	if !ok {
		return domain.WishlistItem{}, false
	}

	prod, _ := FirstObject(m,
		[]string{"product"},
		[]string{"sneaker"},
		[]string{"productInfo"},
		[]string{"productId"},
	)

	item := domain.WishlistItem{
		ProductID:      Field(m, "productId"),
		WishlistItemID: FirstField(m, "_id", "wishlistItemId"),
		Name:           FirstField(prod, "name"),
	}
	if item.ProductID == "" {
		item.ProductID = FirstField(prod, "_id", "id", "productId")
	}
	if item.Name == "" {
		item.Name = Field(m, "name")
	}

	item.ImageURL = Field(m, "imageUrl")
	if item.ImageURL == "" && prod != nil {
		item.ImageURL = imageURL(prod)
	}

	if p, ok := m["price"].(float64); ok {
		item.Price = p
	} else if p, ok := prod["price"].(float64); ok {
		item.Price = p
	}
	return item, true
}

// WishlistItems extracts and normalizes the entries of a wishlist response.
func WishlistItems(root any) []domain.WishlistItem {
	raw := FirstArray(root, wishlistItemPaths...)
	out := make([]domain.WishlistItem, 0, len(raw))
	for _, r := range raw {
		if it, ok := WishlistItem(r); ok {
			out = append(out, it)
		}
	}
	return out
}

// AddedWishlistItem reads the created entry of an add response from
// data.item, then data, then the root.
func AddedWishlistItem(root any) (domain.WishlistItem, bool) {
	if m, ok := FirstObject(root, []string{"data", "item"}, []string{"data"}); ok {
		return WishlistItem(m)
	}
	return WishlistItem(root)
}
