package dashboard

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"crm/internal/model"
)

// DisplayDateLayout is how dates are shown on the dashboard.
const DisplayDateLayout = "02.01.2006"

const placeholder = "-"

// Formatter renders money, dates and hours for display.
type Formatter struct {
	printer  *message.Printer
	currency string
}

// NewFormatter builds a Formatter for locale, such as "ru" or "en-US".
// An unparsable locale falls back to Russian.
func NewFormatter(locale, currencySymbol string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Russian
	}
	return NewFormatterForTag(tag, currencySymbol)
}

// NewFormatterForTag builds a Formatter for tag.
func NewFormatterForTag(tag language.Tag, currencySymbol string) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag), currency: currencySymbol}
}

// Money rounds to whole units and groups digits by locale, e.g. "1,500 ₽".
func (f *Formatter) Money(amount decimal.Decimal) string {
	return f.printer.Sprintf("%d %s", amount.Round(0).IntPart(), f.currency)
}

// Count groups digits by locale.
func (f *Formatter) Count(n int) string {
	return f.printer.Sprintf("%d", n)
}

// Date formats d as DD.MM.YYYY, or "-" when d is zero.
func (f *Formatter) Date(d model.Date) string {
	if d.IsZero() {
		return placeholder
	}
	return d.Time().Format(DisplayDateLayout)
}

// Timestamp formats the calendar day of t, or "-" when t is zero.
func (f *Formatter) Timestamp(t time.Time) string {
	if t.IsZero() {
		return placeholder
	}
	return t.Format(DisplayDateLayout)
}

// Hours formats overtime without trailing zeros.
func (f *Formatter) Hours(h decimal.Decimal) string {
	return h.String()
}

func orDash(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
