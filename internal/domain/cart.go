package domain

import "github.com/shopspring/decimal"

// CatalogItem is a product as supplied by the listing side of the shop.
// It carries no quantity; quantities only exist inside a cart.
type CatalogItem struct {
	ID     string          `json:"id"`
	Title  string          `json:"title"`
	Author string          `json:"author"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
}

// CartItem is a catalog item plus the quantity the shopper selected.
// A cart holds at most one CartItem per ID.
type CartItem struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Author   string          `json:"author"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// CloneItems returns a copy of items safe to hand outside the owning store.
func CloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	copy(out, items)
	return out
}
