package shopify

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/laprofumo/shopify-klara-sync-backend/daybook"
)

type order struct {
	ID          json.Number `json:"id"`
	CancelledAt *string     `json:"cancelled_at"`
	LineItems   lineItems   `json:"line_items"`
}

type lineItem struct {
	Quantity  flexNumber `json:"quantity"`
	Price     flexNumber `json:"price"`
	LinePrice flexNumber `json:"line_price"`
	GiftCard  flexBool   `json:"gift_card"`
}

func (o order) toDomain() daybook.Order {
	out := daybook.Order{ID: o.ID.String(), CancelledAt: o.CancelledAt}
	if o.LineItems == nil {
		return out
	}
	out.LineItems = make([]daybook.LineItem, len(o.LineItems))
	for i, li := range o.LineItems {
		out.LineItems[i] = daybook.LineItem{
			Quantity:  li.Quantity.value,
			Price:     li.Price.value,
			LinePrice: li.LinePrice.value,
			GiftCard:  bool(li.GiftCard),
		}
	}
	return out
}

// lineItems decodes a JSON array of line items. Anything else decodes as
// nil; array elements that are not objects are dropped.
type lineItems []lineItem

func (l *lineItems) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		*l = nil
		return nil
	}
	items := make(lineItems, 0, len(raw))
	for _, r := range raw {
		var li lineItem
		if err := json.Unmarshal(r, &li); err != nil {
			continue
		}
		items = append(items, li)
	}
	*l = items
	return nil
}

// flexNumber accepts a JSON number, a numeric string or null.
type flexNumber struct {
	value daybook.Value
}

func (f *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		f.value = daybook.Value{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			f.value = daybook.Value{Present: true, Invalid: true}
			return nil
		}
		f.value = daybook.ParseValue(s)
	default:
		f.value = daybook.ParseValue(string(data))
	}
	return nil
}

// flexBool accepts a JSON bool, a boolean-like string ("true", "1", "yes")
// or a number. Anything else reads as false.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = false
	switch {
	case bytes.Equal(data, []byte("true")):
		*f = true
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes":
			*f = true
		}
	default:
		if n, err := strconv.ParseFloat(string(data), 64); err == nil && n != 0 {
			*f = true
		}
	}
	return nil
}
