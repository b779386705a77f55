package receipt

import (
	"fmt"
)

// Validate checks a payload for structural problems before it is handed to
// a caller that wants strictness. The encoder itself is tolerant: missing
// optional fields are simply omitted from the printed stream, so validation
// is advisory and never sits on the print path.
func Validate(p *Payload) error {
	if p == nil {
		return fmt.Errorf("payload is required")
	}

	for i, item := range p.Items {
		if item.Name == "" {
			return fmt.Errorf("item[%d]: name is required", i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("item[%d] %q: quantity must be >= 1", i, item.Name)
		}
		if item.Price < 0 {
			return fmt.Errorf("item[%d] %q: price must not be negative", i, item.Name)
		}
	}

	if p.Subtotal < 0 {
		return fmt.Errorf("subtotal must not be negative")
	}
	if p.Discount < 0 {
		return fmt.Errorf("discount must not be negative")
	}
	if p.Tax < 0 {
		return fmt.Errorf("tax must not be negative")
	}
	if p.Total < 0 {
		return fmt.Errorf("total must not be negative")
	}

	if p.PaymentMethod != "" {
		switch p.PaymentMethod {
		case PaymentCash, PaymentCard, PaymentOther:
		default:
			return fmt.Errorf("invalid paymentMethod: %s (must be cash, card, or other)", p.PaymentMethod)
		}
	}

	return nil
}
