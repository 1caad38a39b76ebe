package models

import "github.com/shopspring/decimal"

// Product is the catalog's view of a sellable item. The orders service
// only reads these; the catalog service owns them.
type Product struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	OriginalPrice   decimal.Decimal  `json:"original_price"`
	DiscountedPrice *decimal.Decimal `json:"discounted_price,omitempty"`
	Stock           int              `json:"stock"`
}

// EffectivePrice is the price an order snapshots: the discounted price
// when one is set, the original price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountedPrice != nil {
		return *p.DiscountedPrice
	}
	return p.OriginalPrice
}
