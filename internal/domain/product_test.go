package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func catalog() []Product {
	return []Product{
		{ID: "1", Name: "Air Zoom", Brand: "Nike", Category: "Running"},
		{ID: "2", Name: "Ultraboost", Brand: "Adidas", Category: " Running "},
		{ID: "3", Name: "Chuck 70", Brand: "Converse", Category: ""},
		{ID: "4", Name: "Air Max", Brand: "Nike", Category: "Lifestyle"},
		{ID: "5", Name: "Gel Kayano", Brand: "Asics", Category: "Running"},
	}
}

func TestCategories_FirstSeenTrimmedWithDefault(t *testing.T) {
	assert.Equal(t, []string{"Running", "Other", "Lifestyle"}, Categories(catalog()))
	assert.Empty(t, Categories(nil))
}

func TestSearch(t *testing.T) {
	all := catalog()

	t.Run("matches name case-insensitively", func(t *testing.T) {
		got := Search(all, "  AIR ")
		assert.Len(t, got, 2)
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "4", got[1].ID)
	})

	t.Run("matches brand", func(t *testing.T) {
		got := Search(all, "asics")
		assert.Len(t, got, 1)
		assert.Equal(t, "5", got[0].ID)
	})

	t.Run("blank query returns everything", func(t *testing.T) {
		assert.Equal(t, all, Search(all, ""))
		assert.Equal(t, all, Search(all, "   "))
	})

	t.Run("no match is empty not nil", func(t *testing.T) {
		got := Search(all, "zzz")
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestRelated(t *testing.T) {
	all := catalog()

	got := Related(all, all[0], 4)
	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	// Same category or same brand, catalog order, never the product itself.
	assert.Equal(t, []string{"4", "5"}, ids)

	assert.Len(t, Related(all, all[0], 1), 1)
}

func TestFirstAvailableSize(t *testing.T) {
	tests := []struct {
		name  string
		sizes []SizeStock
		want  string
	}{
		{"first in stock", []SizeStock{{"40", 0, true}, {"41", 3, true}, {"42", 1, true}}, "41"},
		{"all sold out", []SizeStock{{"40", 0, true}, {"41", 0, true}}, ""},
		{"untracked falls back to first", []SizeStock{{"38", 0, false}, {"39", 0, false}}, "38"},
		{"no sizes", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Product{Sizes: tt.sizes}
			assert.Equal(t, tt.want, p.FirstAvailableSize())
		})
	}
}

func TestStockFor(t *testing.T) {
	p := Product{Sizes: []SizeStock{{"40", 2, true}, {"41", 0, false}}}
	assert.Equal(t, 2, p.StockFor("40"))
	assert.Equal(t, 0, p.StockFor("41"))
	assert.Equal(t, 0, p.StockFor("45"))
}

func TestFilters_Query(t *testing.T) {
	f := Filters{
		Brands:     []string{"Nike", "Adidas"},
		Categories: []string{"Running"},
		Genders:    []string{"men"},
		Sizes:      []string{"42", "43"},
		PriceRange: []float64{100000, 2500000.5},
		Search:     "  zoom ",
	}

	q := f.Query()
	assert.Equal(t, []string{"Nike", "Adidas"}, q["brand"])
	assert.Equal(t, []string{"Running"}, q["category"])
	assert.Equal(t, []string{"men"}, q["gender"])
	assert.Equal(t, []string{"42", "43"}, q["size"])
	assert.Equal(t, "100000", q.Get("minPrice"))
	assert.Equal(t, "2500000.5", q.Get("maxPrice"))
	assert.Equal(t, "zoom", q.Get("search"))
}

func TestFilters_QueryOmitsPartialRangeAndBlankSearch(t *testing.T) {
	q := Filters{PriceRange: []float64{100}, Search: "   "}.Query()
	assert.Empty(t, q.Encode())
}
