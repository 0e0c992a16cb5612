package daybook

import "github.com/shopspring/decimal"

// Account is a chart-of-accounts number in the bookkeeping system.
type Account string

// The fixed four-account schema every day is posted to.
const (
	AccountRevenue     Account = "3000" // Umsatz 8.1%
	AccountVAT         Account = "2200" // MWST
	AccountGiftCards   Account = "2030" // Gutscheinverbindlichkeiten
	AccountReceivables Account = "1101" // Forderungen Karten/Online
)

// PostingLine is one account amount of a posting.
type PostingLine struct {
	Account Account
	Label   string
	Amount  decimal.Decimal
}

// Posting is the accounting entry for one day.
type Posting struct {
	Date  string
	Lines []PostingLine
}

// Amount returns the amount posted to account, zero if absent.
func (p Posting) Amount(account Account) decimal.Decimal {
	for _, l := range p.Lines {
		if l.Account == account {
			return l.Amount
		}
	}
	return decimal.Zero
}

// NewPosting maps a summary onto the four-account schema.
// Receivables carry the gross revenue only; gift-card proceeds are not
// added to them.
func NewPosting(d DaySummary) Posting {
	return Posting{
		Date: d.Date,
		Lines: []PostingLine{
			{Account: AccountRevenue, Label: "Umsatz 8.1%", Amount: d.GrossRevenue},
			{Account: AccountVAT, Label: "MWST", Amount: d.VAT},
			{Account: AccountGiftCards, Label: "Gutscheinverbindlichkeiten", Amount: d.GiftCardRevenue},
			{Account: AccountReceivables, Label: "Forderungen Karten/Online", Amount: d.GrossRevenue},
		},
	}
}
