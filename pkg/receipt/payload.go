// Package receipt defines the payload structure describing one printed receipt
package receipt

// DefaultPort is the conventional raw ESC/POS listening port
const DefaultPort = 9100

// Payment method values accepted in Payload.PaymentMethod
const (
	PaymentCash  = "cash"
	PaymentCard  = "card"
	PaymentOther = "other"
)

// Payload represents the contents of one receipt, prior to encoding.
// All monetary fields are integer cents; division by 100 happens only
// when formatting for display.
type Payload struct {
	StoreName     string `json:"storeName,omitempty"`
	StoreAddress  string `json:"storeAddress,omitempty"`
	StorePhone    string `json:"storePhone,omitempty"`
	ReceiptNumber string `json:"receiptNumber,omitempty"`
	Date          string `json:"date,omitempty"`
	Cashier       string `json:"cashier,omitempty"`
	Customer      string `json:"customer,omitempty"`
	Items         []Item `json:"items"`
	Subtotal      int    `json:"subtotal"`
	Discount      int    `json:"discount,omitempty"`
	Tax           int    `json:"tax,omitempty"`
	Total         int    `json:"total"`
	PaymentMethod string `json:"paymentMethod,omitempty"`
	Footer        string `json:"footer,omitempty"`

	// Optional machine-readable blocks printed above the cut
	Barcode string `json:"barcode,omitempty"`
	QR      string `json:"qr,omitempty"`
}

// Item is a single receipt line. Total is taken as supplied by the caller;
// it is only recomputed from Quantity*Price when left zero.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
	Total    int    `json:"total"`
}

// LineTotal returns the amount printed for the item
func (i Item) LineTotal() int {
	if i.Total != 0 {
		return i.Total
	}
	qty := i.Quantity
	if qty < 1 {
		qty = 1
	}
	return qty * i.Price
}

// TestPayload returns the fixed demonstration receipt used by test prints
func TestPayload(date string) *Payload {
	return &Payload{
		StoreName:     "POS Suite Demo Store",
		StoreAddress:  "123 Main Street, City, State 12345",
		StorePhone:    "(555) 123-4567",
		ReceiptNumber: "TEST-001",
		Date:          date,
		Cashier:       "Test Cashier",
		Items: []Item{
			{Name: "Test Coffee", Quantity: 2, Price: 350, Total: 700},
			{Name: "Test Sandwich", Quantity: 1, Price: 750, Total: 750},
		},
		Subtotal:      1450,
		Tax:           145,
		Total:         1595,
		PaymentMethod: PaymentCash,
	}
}
