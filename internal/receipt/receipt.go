// Package receipt renders printable receipts for ledger records.
package receipt

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
)

// MaxItemName is the width of the item column on the printed receipt.
const MaxItemName = 12

// Shop is the letterhead printed at the top of every receipt.
type Shop struct {
	Name    string
	Address string
	Phone   string
}

// Line is one printed row.
type Line struct {
	Name     string
	Quantity money.Quantity
	Rate     money.Money
	Amount   money.Money
}

// Receipt is the view model behind the receipt template.
type Receipt struct {
	ShopName      string
	ShopAddress   string
	ShopPhone     string
	KindLabel     string
	Number        string
	Date          time.Time
	CustomerName  string
	CustomerPhone string
	Items         []Line
	Subtotal      money.Money
	Discount      money.Money
	Total         money.Money
	Paid          money.Money
	Balance       money.Money
	ModeLabel     string
	DueDate       *time.Time
}

// Build prepares rec for printing. Paid and balance reflect bal, so a
// reprint after later payments shows what is still owed; the due date is
// dropped once nothing is pending.
func Build(shop Shop, rec *ledger.Record, bal ledger.Balance) Receipt {
	r := Receipt{
		ShopName:      shop.Name,
		ShopAddress:   shop.Address,
		ShopPhone:     shop.Phone,
		KindLabel:     rec.Kind.Label(),
		Number:        rec.Number,
		Date:          rec.CreatedAt,
		CustomerName:  rec.Counterparty.Name,
		CustomerPhone: phoneOrNA(rec.Counterparty.Phone),
		Items:         make([]Line, 0, len(rec.Items)),
		Subtotal:      rec.Subtotal,
		Discount:      rec.Discount,
		Total:         rec.Total,
		Paid:          bal.Paid,
		Balance:       bal.Pending,
		ModeLabel:     rec.Plan.Mode.Label(),
	}
	if !bal.Pending.IsZero() && bal.DueDate != nil {
		due := *bal.DueDate
		r.DueDate = &due
	}
	for _, l := range rec.Items {
		r.Items = append(r.Items, Line{
			Name:     truncate(l.Name, MaxItemName),
			Quantity: l.Quantity,
			Rate:     l.UnitPrice,
			Amount:   l.Amount(),
		})
	}
	return r
}

func phoneOrNA(phone string) string {
	if strings.TrimSpace(phone) == "" {
		return "N/A"
	}
	return phone
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
