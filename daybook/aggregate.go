/*
aggregate.go - Classify and sum one day's orders

RULES:
  1. An order with a cancellation marker contributes nothing.
  2. An order without a line-item list contributes nothing.
  3. A line's value is its line total if present, else price x quantity
     (quantity defaults to 1).
  4. A line whose value cannot be computed is skipped; the rest of the day
     still aggregates.
  5. Gift-card lines go to GiftCardRevenue, everything else to GrossRevenue.
  6. Both totals are rounded once, after summation.
  7. VAT is computed from the rounded gross.

Aggregate performs no I/O. Collector feeds it and stores the result.
*/
package daybook

import "github.com/shopspring/decimal"

// Value is a numeric field as received from upstream: absent, well formed,
// or present but not a number.
type Value struct {
	Amount  decimal.Decimal
	Present bool
	Invalid bool
}

// NewValue returns a present, well-formed value.
func NewValue(d decimal.Decimal) Value {
	return Value{Amount: d, Present: true}
}

// ParseValue parses s as a decimal. Unparseable input yields an invalid value.
func ParseValue(s string) Value {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Value{Present: true, Invalid: true}
	}
	return NewValue(d)
}

// LineItem is one order line.
type LineItem struct {
	Quantity  Value
	Price     Value // unit price
	LinePrice Value // line total, preferred when present
	GiftCard  bool
}

// Amount returns the monetary value of the line. ok is false when the value
// cannot be computed from the fields present.
func (li LineItem) Amount() (decimal.Decimal, bool) {
	if li.LinePrice.Present {
		if li.LinePrice.Invalid {
			return decimal.Zero, false
		}
		return li.LinePrice.Amount, true
	}

	if !li.Price.Present || li.Price.Invalid {
		return decimal.Zero, false
	}
	qty := decimal.NewFromInt(1)
	if li.Quantity.Present {
		if li.Quantity.Invalid {
			return decimal.Zero, false
		}
		qty = li.Quantity.Amount
	}
	return li.Price.Amount.Mul(qty), true
}

// Order is a paid storefront order.
type Order struct {
	ID          string
	CancelledAt *string
	LineItems   []LineItem // nil when upstream sent no list
}

// Cancelled reports whether the order carries a cancellation marker.
func (o Order) Cancelled() bool {
	return o.CancelledAt != nil
}

// AggregateResult is a DaySummary plus counters describing what was skipped.
type AggregateResult struct {
	Summary         DaySummary
	Orders          int
	CancelledOrders int
	Lines           int
	MalformedLines  int
}

// Aggregate builds the prepared summary for date from orders.
func Aggregate(orders []Order, date string) DaySummary {
	return AggregateDetailed(orders, date).Summary
}

// AggregateDetailed is Aggregate with skip counters for logging.
func AggregateDetailed(orders []Order, date string) AggregateResult {
	res := AggregateResult{Orders: len(orders)}
	gross := decimal.Zero
	gift := decimal.Zero

	for _, order := range orders {
		if order.Cancelled() {
			res.CancelledOrders++
			continue
		}
		for _, li := range order.LineItems {
			amount, ok := li.Amount()
			if !ok {
				res.MalformedLines++
				continue
			}
			res.Lines++
			if li.GiftCard {
				gift = gift.Add(amount)
			} else {
				gross = gross.Add(amount)
			}
		}
	}

	gross = RoundMoney(gross)
	res.Summary = DaySummary{
		Date:            date,
		GrossRevenue:    gross,
		VAT:             ComputeVAT(gross),
		GiftCardRevenue: RoundMoney(gift),
		Status:          StatusPrepared,
	}
	return res
}
