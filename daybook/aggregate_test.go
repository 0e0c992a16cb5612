package daybook_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func priced(price string, qty int64) daybook.LineItem {
	return daybook.LineItem{
		Price:    daybook.ParseValue(price),
		Quantity: daybook.NewValue(decimal.NewFromInt(qty)),
	}
}

func lineTotal(total string, giftCard bool) daybook.LineItem {
	return daybook.LineItem{LinePrice: daybook.ParseValue(total), GiftCard: giftCard}
}

func order(items ...daybook.LineItem) daybook.Order {
	return daybook.Order{ID: "1", LineItems: items}
}

func cancelled(items ...daybook.LineItem) daybook.Order {
	at := "2025-06-01T12:00:00Z"
	return daybook.Order{ID: "2", CancelledAt: &at, LineItems: items}
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestAggregate_MixedOrder(t *testing.T) {
	// GIVEN: one order with 2 x 10.00 merchandise and a 50.00 gift card
	// WHEN: aggregating 2025-06-01
	// THEN: gross 20.00, gift cards 50.00, VAT of 20.00, status prepared

	orders := []daybook.Order{
		order(priced("10.00", 2), lineTotal("50.00", true)),
	}

	got := daybook.Aggregate(orders, "2025-06-01")

	assert.Equal(t, "2025-06-01", got.Date)
	assert.Equal(t, "20.00", got.GrossRevenue.StringFixed(2))
	assert.Equal(t, "50.00", got.GiftCardRevenue.StringFixed(2))
	assert.Equal(t, "1.50", got.VAT.StringFixed(2))
	assert.True(t, daybook.ComputeVAT(got.GrossRevenue).Equal(got.VAT))
	assert.Equal(t, daybook.StatusPrepared, got.Status)
}

func TestAggregate_NoOrders(t *testing.T) {
	got := daybook.Aggregate(nil, "2025-01-01")

	assert.True(t, got.GrossRevenue.IsZero())
	assert.True(t, got.VAT.IsZero())
	assert.True(t, got.GiftCardRevenue.IsZero())
	assert.Equal(t, daybook.StatusPrepared, got.Status)
	assert.False(t, got.HasRevenue())
}

func TestAggregate_CancelledOrderContributesNothing(t *testing.T) {
	// GIVEN: a live order and a cancelled one with large line items
	// THEN: only the live order counts

	orders := []daybook.Order{
		order(priced("5.00", 1)),
		cancelled(priced("1000.00", 3), lineTotal("200.00", true)),
	}

	res := daybook.AggregateDetailed(orders, "2025-06-01")

	assert.Equal(t, "5.00", res.Summary.GrossRevenue.StringFixed(2))
	assert.True(t, res.Summary.GiftCardRevenue.IsZero())
	assert.Equal(t, 2, res.Orders)
	assert.Equal(t, 1, res.CancelledOrders)
	assert.Equal(t, 1, res.Lines)
}

func TestAggregate_LinePricePreferred(t *testing.T) {
	// GIVEN: a line with both line total and unit price
	// THEN: the line total wins
	li := priced("10.00", 3)
	li.LinePrice = daybook.ParseValue("25.00")

	got := daybook.Aggregate([]daybook.Order{order(li)}, "2025-06-01")

	assert.Equal(t, "25.00", got.GrossRevenue.StringFixed(2))
}

func TestAggregate_QuantityDefaultsToOne(t *testing.T) {
	li := daybook.LineItem{Price: daybook.ParseValue("12.50")}

	got := daybook.Aggregate([]daybook.Order{order(li)}, "2025-06-01")

	assert.Equal(t, "12.50", got.GrossRevenue.StringFixed(2))
}

func TestAggregate_MalformedLinesSkipped(t *testing.T) {
	// GIVEN: lines with a non-numeric price, a missing price and a bad
	// quantity next to one valid line
	// THEN: the day still aggregates from the valid line

	badQty := priced("3.00", 1)
	badQty.Quantity = daybook.ParseValue("two")

	orders := []daybook.Order{
		order(
			priced("abc", 1),
			daybook.LineItem{},
			badQty,
			lineTotal("not-a-number", true),
			priced("7.00", 1),
		),
	}

	res := daybook.AggregateDetailed(orders, "2025-06-01")

	assert.Equal(t, "7.00", res.Summary.GrossRevenue.StringFixed(2))
	assert.True(t, res.Summary.GiftCardRevenue.IsZero())
	assert.Equal(t, 4, res.MalformedLines)
	assert.Equal(t, 1, res.Lines)
}

func TestAggregate_OrderWithoutLineItems(t *testing.T) {
	orders := []daybook.Order{{ID: "3"}, order(priced("1.00", 1))}

	got := daybook.Aggregate(orders, "2025-06-01")

	assert.Equal(t, "1.00", got.GrossRevenue.StringFixed(2))
}

func TestAggregate_RoundsAfterSummation(t *testing.T) {
	// GIVEN: three lines of 0.335
	// WHEN: summing before rounding (1.005 -> 1.01)
	// THEN: the result differs from rounding each line first (3 x 0.34 = 1.02)

	orders := []daybook.Order{
		order(lineTotal("0.335", false), lineTotal("0.335", false), lineTotal("0.335", false)),
	}

	got := daybook.Aggregate(orders, "2025-06-01")

	assert.Equal(t, "1.01", got.GrossRevenue.StringFixed(2))
}

func TestAggregate_PartitionsEveryValidLine(t *testing.T) {
	// GIVEN: a mix of gift-card and merchandise lines across orders
	// THEN: gross + gift cards equals the sum of every valid line

	orders := []daybook.Order{
		order(priced("19.90", 2), lineTotal("30.00", true)),
		order(lineTotal("4.45", false), priced("100.00", 1)),
		order(lineTotal("25.00", true), priced("x", 1)),
	}

	want := decimal.Zero
	for _, o := range orders {
		for _, li := range o.LineItems {
			if amount, ok := li.Amount(); ok {
				want = want.Add(amount)
			}
		}
	}

	got := daybook.Aggregate(orders, "2025-06-01")

	require.True(t, got.GrossRevenue.Add(got.GiftCardRevenue).Equal(daybook.RoundMoney(want)))
	assert.Equal(t, "144.25", got.GrossRevenue.StringFixed(2))
	assert.Equal(t, "55.00", got.GiftCardRevenue.StringFixed(2))
}
