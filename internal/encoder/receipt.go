package encoder

import (
	"fmt"
	"strings"
	"time"

	"github.com/possuite/print-bridge/pkg/receipt"
)

// LineWidth is the paper width in characters for the target printer class
const LineWidth = 32

var separator = strings.Repeat("-", LineWidth)

// Encode renders a payload into an ESC/POS command stream. It performs no
// I/O and is deterministic: identical payloads produce byte-identical
// output (an empty Date is the one field stamped at encode time). Missing
// optional fields are omitted from the stream, never an error.
func Encode(p *receipt.Payload) []byte {
	e := New()

	e.Initialize()
	e.SetAlignment(AlignCenter)

	if p.StoreName != "" {
		e.SetMode(ModeDoubleSize)
		e.Line(p.StoreName)
		e.SetMode(ModeReset)
	}
	if p.StoreAddress != "" {
		e.Line(p.StoreAddress)
	}
	if p.StorePhone != "" {
		e.Line(p.StorePhone)
	}
	e.Feed(1)

	e.SetAlignment(AlignLeft)
	e.Line("Receipt #: " + orNA(p.ReceiptNumber))
	e.Line("Date: " + orNow(p.Date))
	e.Line("Cashier: " + orNA(p.Cashier))
	if p.Customer != "" {
		e.Line("Customer: " + p.Customer)
	}
	e.Feed(1)

	e.Line(separator)
	for _, item := range p.Items {
		name := item.Name
		if name == "" {
			name = "Unknown Item"
		}
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}

		e.Line(name)
		e.Line(rightJustify(fmt.Sprintf("%d x $%s = $%s",
			qty, formatCents(item.Price), formatCents(item.LineTotal()))))
	}
	e.Line(separator)

	e.Line(rightJustify("Subtotal: $" + formatCents(p.Subtotal)))
	if p.Discount > 0 {
		e.Line(rightJustify("Discount: -$" + formatCents(p.Discount)))
	}
	if p.Tax > 0 {
		e.Line(rightJustify("Tax: $" + formatCents(p.Tax)))
	}

	e.Line(separator)
	e.SetMode(ModeEmphasized)
	e.Line(rightJustify("TOTAL: $" + formatCents(p.Total)))
	e.SetMode(ModeReset)

	if p.PaymentMethod != "" {
		e.Line("Payment: " + strings.ToUpper(p.PaymentMethod))
	}
	e.Feed(1)

	e.SetAlignment(AlignCenter)
	e.Line("Thank you for your business!")
	if p.Footer != "" {
		e.Line(p.Footer)
	}
	e.Feed(2)

	if p.Barcode != "" {
		e.writeBarcode(p.Barcode)
	}
	if p.QR != "" {
		e.writeQR(p.QR)
	}

	e.PartialCut()

	return e.Bytes()
}

// rightJustify pads text with leading spaces so it ends at the last column.
// Overlong lines are left as-is; the printer truncates them itself.
func rightJustify(text string) string {
	pad := LineWidth - len(text)
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + text
}

// formatCents renders integer cents as a two-decimal amount without
// going through floating point
func formatCents(c int) string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func orNow(s string) string {
	if s == "" {
		return time.Now().Format("1/2/2006, 3:04:05 PM")
	}
	return s
}
