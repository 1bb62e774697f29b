package pricing

import "github.com/shopspring/decimal"

type Line struct {
	Price float64
	Qty   int
}

type Rates struct {
	TaxRate          float64
	ShippingFee      float64
	FreeShippingOver float64
}

type Totals struct {
	Items    float64 `json:"itemsPrice"`
	Tax      float64 `json:"taxPrice"`
	Shipping float64 `json:"shippingPrice"`
	Total    float64 `json:"totalPrice"`
}

var cent = decimal.NewFromFloat(0.01)

// Compute prices an order in decimal arithmetic, rounding every figure to cents.
// Shipping is free strictly above the FreeShippingOver threshold.
func Compute(lines []Line, r Rates) Totals {
	items := decimal.Zero
	for _, l := range lines {
		items = items.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	items = items.Round(2)

	shipping := decimal.NewFromFloat(r.ShippingFee).Round(2)
	if items.GreaterThan(decimal.NewFromFloat(r.FreeShippingOver)) {
		shipping = decimal.Zero
	}
	tax := decimal.NewFromFloat(r.TaxRate).Mul(items).Round(2)
	total := items.Add(shipping).Add(tax)

	return Totals{
		Items:    items.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Total:    total.InexactFloat64(),
	}
}

// Differs reports whether two figures are more than half a cent apart.
func Differs(a, b float64) bool {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs().GreaterThanOrEqual(cent.Div(decimal.NewFromInt(2)))
}

// Mismatch reports whether any figure a client sent disagrees with server totals.
// Zero figures are treated as not supplied.
func Mismatch(client, server Totals) bool {
	pairs := [][2]float64{
		{client.Items, server.Items},
		{client.Tax, server.Tax},
		{client.Shipping, server.Shipping},
		{client.Total, server.Total},
	}
	for _, p := range pairs {
		if p[0] != 0 && Differs(p[0], p[1]) {
			return true
		}
	}
	return false
}
