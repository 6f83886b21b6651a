package payments

import (
	"fmt"
	"strings"
)

// receiptLines renders the itemized order summary, one line per item:
// "• desc — qty × $unit".
func receiptLines(lines []SessionLine) string {
	if len(lines) == 0 {
		return "(no items?)"
	}

	rendered := make([]string, 0, len(lines))
	for _, line := range lines {
		desc := line.Description
		if desc == "" {
			desc = "Item"
		}
		unit := float64(line.UnitAmountCents) / 100
		rendered = append(rendered, fmt.Sprintf("• %s — %d × $%.2f", desc, line.Quantity, unit))
	}
	return strings.Join(rendered, "\n")
}

func customerReceipt(session *Session, storeName string) string {
	name := session.CustomerName
	if name == "" {
		name = "Customer"
	}
	total := float64(session.AmountTotalCents) / 100
	currency := strings.ToUpper(session.Currency)
	if currency == "" {
		currency = "USD"
	}

	return fmt.Sprintf(`Thanks for your order, %s!

Order Summary
%s

Total: $%.2f %s

— %s`, name, receiptLines(session.Lines), total, currency, storeName)
}

func operatorNotice(session *Session) string {
	email := session.CustomerEmail
	if email == "" {
		email = "N/A"
	}
	name := session.CustomerName
	if name == "" {
		name = "Customer"
	}
	total := float64(session.AmountTotalCents) / 100
	currency := strings.ToUpper(session.Currency)
	if currency == "" {
		currency = "USD"
	}

	return fmt.Sprintf(`Session: %s
Email: %s
Name: %s
Total: $%.2f %s

Items:
%s`, session.ID, email, name, total, currency, receiptLines(session.Lines))
}
