package money

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var displayPrinter = message.NewPrinter(language.MustParse("en-IN"))

// Format renders an amount for display with the rupee sign and en-IN digit
// grouping. Paise are shown only when non-zero.
func Format(m Money) string {
	sign := ""
	if m < 0 {
		sign = "-"
	}
	abs := m.Abs()
	rupees := int64(abs) / paisePerRupee
	paise := int64(abs) % paisePerRupee
	out := sign + "₹" + displayPrinter.Sprintf("%d", rupees)
	if paise != 0 {
		out += fmt.Sprintf(".%02d", paise)
	}
	return out
}
