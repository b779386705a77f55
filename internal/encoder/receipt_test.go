package encoder

import (
	"bytes"
	"strings"
	"testing"

	"github.com/possuite/print-bridge/pkg/receipt"
)

func samplePayload() *receipt.Payload {
	return &receipt.Payload{
		StoreName:     "Corner Shop",
		StoreAddress:  "1 High Street",
		StorePhone:    "(555) 000-1111",
		ReceiptNumber: "RCP-100",
		Date:          "1/2/2025, 3:04:05 PM",
		Cashier:       "Alex",
		Items: []receipt.Item{
			{Name: "Coffee", Quantity: 2, Price: 350, Total: 700},
		},
		Subtotal:      700,
		Total:         700,
		PaymentMethod: receipt.PaymentCash,
	}
}

func TestEncode_Deterministic(t *testing.T) {
	p := samplePayload()

	first := Encode(p)
	second := Encode(p)

	if !bytes.Equal(first, second) {
		t.Error("Expected byte-identical output for identical payloads")
	}
}

func TestEncode_ControlFraming(t *testing.T) {
	data := Encode(samplePayload())

	if !bytes.HasPrefix(data, []byte{ESC, '@', ESC, 'a', AlignCenter}) {
		t.Error("Expected stream to start with initialize + center alignment")
	}
	if !bytes.HasSuffix(data, []byte{GS, 'V', 0x42, 0x00}) {
		t.Error("Expected stream to end with partial cut")
	}
}

func TestEncode_StoreHeader(t *testing.T) {
	data := Encode(samplePayload())

	doubled := append([]byte{ESC, '!', ModeDoubleSize}, []byte("Corner Shop\n")...)
	doubled = append(doubled, ESC, '!', ModeReset)

	if !bytes.Contains(data, doubled) {
		t.Error("Expected store name wrapped in double-size mode")
	}
	if !bytes.Contains(data, []byte("1 High Street\n(555) 000-1111\n")) {
		t.Error("Expected address and phone on their own lines")
	}
}

func TestEncode_StoreHeaderOmitted(t *testing.T) {
	p := samplePayload()
	p.StoreName = ""
	p.StoreAddress = ""
	p.StorePhone = ""

	data := Encode(p)

	if bytes.Contains(data, []byte{ESC, '!', ModeDoubleSize}) {
		t.Error("Expected no double-size mode without a store name")
	}
}

func TestEncode_ItemLine(t *testing.T) {
	data := Encode(samplePayload())
	text := string(data)

	want := "2 x $3.50 = $7.00"
	line := strings.Repeat(" ", LineWidth-len(want)) + want

	if !strings.Contains(text, "Coffee\n") {
		t.Error("Expected item name on its own line")
	}
	if !strings.Contains(text, line+"\n") {
		t.Errorf("Expected right-justified item line %q", line)
	}
}

func TestEncode_HeaderDefaults(t *testing.T) {
	p := samplePayload()
	p.ReceiptNumber = ""
	p.Cashier = ""

	text := string(Encode(p))

	if !strings.Contains(text, "Receipt #: N/A\n") {
		t.Error("Expected N/A receipt number default")
	}
	if !strings.Contains(text, "Cashier: N/A\n") {
		t.Error("Expected N/A cashier default")
	}
}

func TestEncode_CustomerLine(t *testing.T) {
	p := samplePayload()
	text := string(Encode(p))
	if strings.Contains(text, "Customer:") {
		t.Error("Expected no customer line when customer is absent")
	}

	p.Customer = "Jordan"
	text = string(Encode(p))
	if !strings.Contains(text, "Customer: Jordan\n") {
		t.Error("Expected customer line when customer is present")
	}
}

func TestEncode_Discount(t *testing.T) {
	p := samplePayload()
	p.Discount = 0
	if strings.Contains(string(Encode(p)), "Discount:") {
		t.Error("Expected no discount line for zero discount")
	}

	p.Discount = 150
	if !strings.Contains(string(Encode(p)), "Discount: -$1.50") {
		t.Error("Expected discount line for discount of 150 cents")
	}
}

func TestEncode_Tax(t *testing.T) {
	p := samplePayload()
	p.Tax = 0
	if strings.Contains(string(Encode(p)), "Tax:") {
		t.Error("Expected no tax line for zero tax")
	}

	p.Tax = 145
	if !strings.Contains(string(Encode(p)), "Tax: $1.45") {
		t.Error("Expected tax line for tax of 145 cents")
	}
}

func TestEncode_TotalEmphasized(t *testing.T) {
	data := Encode(samplePayload())

	want := "TOTAL: $7.00"
	line := strings.Repeat(" ", LineWidth-len(want)) + want
	emphasized := append([]byte{ESC, '!', ModeEmphasized}, []byte(line+"\n")...)
	emphasized = append(emphasized, ESC, '!', ModeReset)

	if !bytes.Contains(data, emphasized) {
		t.Error("Expected emphasized right-justified total line")
	}
}

func TestEncode_Payment(t *testing.T) {
	text := string(Encode(samplePayload()))
	if !strings.Contains(text, "Payment: CASH\n") {
		t.Error("Expected uppercased payment method")
	}
}

func TestEncode_ItemDefaults(t *testing.T) {
	p := samplePayload()
	p.Items = []receipt.Item{{Quantity: 0, Price: 250}}

	text := string(Encode(p))

	if !strings.Contains(text, "Unknown Item\n") {
		t.Error("Expected placeholder name for unnamed item")
	}
	if !strings.Contains(text, "1 x $2.50 = $2.50") {
		t.Error("Expected quantity default of 1 and recomputed line total")
	}
}

func TestEncode_TrustsSuppliedTotal(t *testing.T) {
	p := samplePayload()
	p.Items = []receipt.Item{{Name: "Coffee", Quantity: 2, Price: 350, Total: 999}}

	if !strings.Contains(string(Encode(p)), "2 x $3.50 = $9.99") {
		t.Error("Expected supplied item total to be printed unchanged")
	}
}

func TestEncode_OverlongLineNotPadded(t *testing.T) {
	p := samplePayload()
	p.Items = []receipt.Item{
		{Name: "Widget", Quantity: 1000000, Price: 123456789, Total: 123456789000000},
	}

	text := string(Encode(p))

	want := "1000000 x $1234567.89 = $1234567890000.00"
	if !strings.Contains(text, "\n"+want+"\n") {
		t.Error("Expected overlong line emitted without leading spaces")
	}
}

func TestEncode_QRAndBarcodeBlocks(t *testing.T) {
	p := samplePayload()
	base := Encode(p)

	p.QR = "https://example.com/r/RCP-100"
	p.Barcode = "RCP-100"
	withBlocks := Encode(p)

	if len(withBlocks) <= len(base) {
		t.Error("Expected raster blocks to grow the stream")
	}
	if !bytes.Contains(withBlocks, []byte{ESC, '*', 33}) {
		t.Error("Expected raster line commands in the stream")
	}
	if !bytes.HasSuffix(withBlocks, []byte{GS, 'V', 0x42, 0x00}) {
		t.Error("Expected partial cut to remain the final command")
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{50, "0.50"},
		{350, "3.50"},
		{1595, "15.95"},
		{-150, "-1.50"},
	}

	for _, tt := range tests {
		if got := formatCents(tt.cents); got != tt.want {
			t.Errorf("formatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestRightJustify(t *testing.T) {
	got := rightJustify("abc")
	if len(got) != LineWidth {
		t.Errorf("Expected padded length %d, got %d", LineWidth, len(got))
	}
	if !strings.HasSuffix(got, "abc") {
		t.Errorf("Expected text at the end of the line, got %q", got)
	}

	long := strings.Repeat("x", LineWidth+5)
	if rightJustify(long) != long {
		t.Error("Expected overlong text returned unchanged")
	}
}
