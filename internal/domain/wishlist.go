package domain

// WishlistItem is one saved product. ProductID is the identity of the entry;
// WishlistItemID is the server's own line ID when it sent one.
type WishlistItem struct {
	ProductID      string  `json:"productId"`
	WishlistItemID string  `json:"wishlistItemId,omitempty"`
	Name           string  `json:"name"`
	ImageURL       string  `json:"imageUrl"`
	Price          float64 `json:"price"`
}

// Merge fills the blank display fields of i from other and takes other's
// WishlistItemID when it has one.
func (i WishlistItem) Merge(other WishlistItem) WishlistItem {
	if other.WishlistItemID != "" {
		i.WishlistItemID = other.WishlistItemID
	}
	if i.Name == "" {
		i.Name = other.Name
	}
	if i.ImageURL == "" {
		i.ImageURL = other.ImageURL
	}
	if i.Price == 0 {
		i.Price = other.Price
	}
	return i
}

// Wishlist is an ordered list of items unique by ProductID together with its
// membership index. The index keys always equal the ProductIDs of the list.
// A Wishlist is not safe for concurrent use.
type Wishlist struct {
	items []WishlistItem
	index map[string]bool
}

// NewWishlist returns an empty wishlist.
func NewWishlist() *Wishlist {
	return &Wishlist{index: make(map[string]bool)}
}

// Replace rebuilds the list from items, de-duplicated by ProductID. A
// repeated ProductID keeps the position of its first occurrence and the value
// of its last. Items without a ProductID are dropped.
func (w *Wishlist) Replace(items []WishlistItem) {
	pos := make(map[string]int, len(items))
	out := make([]WishlistItem, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			continue
		}
		if i, ok := pos[it.ProductID]; ok {
			out[i] = it
			continue
		}
		pos[it.ProductID] = len(out)
		out = append(out, it)
	}

	w.items = out
	w.index = make(map[string]bool, len(out))
	for _, it := range out {
		w.index[it.ProductID] = true
	}
}

// Has reports membership in O(1).
func (w *Wishlist) Has(productID string) bool {
	return w.index[productID]
}

// Get returns the entry for productID.
func (w *Wishlist) Get(productID string) (WishlistItem, bool) {
	if !w.index[productID] {
		return WishlistItem{}, false
	}
	for _, it := range w.items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return WishlistItem{}, false
}

// Add appends item unless its ProductID is already a member. It reports
// whether the item was added.
func (w *Wishlist) Add(item WishlistItem) bool {
	if item.ProductID == "" || w.index[item.ProductID] {
		return false
	}
	w.items = append(w.items, item)
	w.index[item.ProductID] = true
	return true
}

// Remove deletes the entry for productID and returns it with its former
// position.
func (w *Wishlist) Remove(productID string) (WishlistItem, int, bool) {
	if !w.index[productID] {
		return WishlistItem{}, -1, false
	}
	for i, it := range w.items {
		if it.ProductID == productID {
			w.items = append(w.items[:i], w.items[i+1:]...)
			delete(w.index, productID)
			return it, i, true
		}
	}
	delete(w.index, productID)
	return WishlistItem{}, -1, false
}

// InsertAt puts item back at pos, clamped to the list bounds. It is a no-op
// when the ProductID is already a member.
func (w *Wishlist) InsertAt(item WishlistItem, pos int) bool {
	if item.ProductID == "" || w.index[item.ProductID] {
		return false
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(w.items) {
		pos = len(w.items)
	}
	w.items = append(w.items, WishlistItem{})
	copy(w.items[pos+1:], w.items[pos:])
	w.items[pos] = item
	w.index[item.ProductID] = true
	return true
}

// Reconcile replaces the provisional entry for provisionalID with the server
// view of it. When the server reports a different ProductID the entry and its
// index key move to that ID; if the new ID is already a member the
// provisional entry is dropped instead. It is a no-op when the provisional
// entry is gone.
func (w *Wishlist) Reconcile(provisionalID string, server WishlistItem) {
	canonical := server.ProductID
	if canonical == "" {
		canonical = provisionalID
	}

	for i, it := range w.items {
		if it.ProductID != provisionalID {
			continue
		}
		if canonical != provisionalID && w.index[canonical] {
			w.items = append(w.items[:i], w.items[i+1:]...)
			delete(w.index, provisionalID)
			return
		}
		merged := it.Merge(server)
		merged.ProductID = canonical
		w.items[i] = merged
		if canonical != provisionalID {
			delete(w.index, provisionalID)
			w.index[canonical] = true
		}
		return
	}
}

// Items returns a copy of the list.
func (w *Wishlist) Items() []WishlistItem {
	return append([]WishlistItem(nil), w.items...)
}

// Index returns a copy of the membership index.
func (w *Wishlist) Index() map[string]bool {
	out := make(map[string]bool, len(w.index))
	for k, v := range w.index {
		out[k] = v
	}
	return out
}

// Len returns the number of entries.
func (w *Wishlist) Len() int {
	return len(w.items)
}

// Clear empties the list and index.
func (w *Wishlist) Clear() {
	w.items = nil
	w.index = make(map[string]bool)
}
