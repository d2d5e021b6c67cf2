package domain

// CartProduct is the product snapshot embedded in a cart line.
type CartProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
}

// CartItem is one line of the server-owned cart.
type CartItem struct {
	ID        string       `json:"id"`
	ProductID string       `json:"productId"`
	Size      string       `json:"size"`
	Quantity  int          `json:"quantity"`
	Product   *CartProduct `json:"product,omitempty"`
}

// UnitPrice is the snapshot price, 0 when the line has no snapshot.
func (i CartItem) UnitPrice() float64 {
	if i.Product == nil {
		return 0
	}
	return i.Product.Price
}

// MinQuantity is the quantity floor of a cart line.
const MinQuantity = 1

// ClampQuantity raises qty to MinQuantity. There is no ceiling at this layer.
func ClampQuantity(qty int) int {
	if qty < MinQuantity {
		return MinQuantity
	}
	return qty
}

// Totals are the derived money figures of a cart.
type Totals struct {
	TotalItems int     `json:"totalItems"`
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	GrandTotal float64 `json:"grandTotal"`
}

// TotalItems sums the quantities.
func TotalItems(items []CartItem) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Subtotal sums unit price times quantity.
func Subtotal(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.UnitPrice() * float64(it.Quantity)
	}
	return total
}

// Shipping is the flat fee when there is anything to ship, otherwise 0.
func Shipping(subtotal, fee float64) float64 {
	if subtotal > 0 {
		return fee
	}
	return 0
}

// ComputeTotals derives every figure from the current lines.
func ComputeTotals(items []CartItem, fee float64) Totals {
	sub := Subtotal(items)
	ship := Shipping(sub, fee)
	return Totals{
		TotalItems: TotalItems(items),
		Subtotal:   sub,
		Shipping:   ship,
		GrandTotal: sub + ship,
	}
}

// FindLine returns the index of the line for productID in size, or -1.
func FindLine(items []CartItem, productID, size string) int {
	for i := range items {
		if items[i].ProductID == productID && items[i].Size == size {
			return i
		}
	}
	return -1
}

// FindItem returns the index of the line with the given ID, or -1.
func FindItem(items []CartItem, itemID string) int {
	for i := range items {
		if items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// CloneCartItems deep-copies a slice of lines.
func CloneCartItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	for i, it := range items {
		if it.Product != nil {
			p := *it.Product
			it.Product = &p
		}
		out[i] = it
	}
	return out
}
