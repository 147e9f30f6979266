// Package deeplink builds the WhatsApp and UPI links the storefront hands the
// customer at checkout, and the order text sent over WhatsApp.
package deeplink

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// WhatsApp returns a click-to-chat link that opens a chat with number
// prefilled with text. number is digits only, country code included.
func WhatsApp(number, text string) string {
	return "https://wa.me/" + number + "?text=" + escape(text)
}

// Payment describes a UPI collect request.
type Payment struct {
	PayeeVPA  string
	PayeeName string
	Amount    float64
	Currency  string
	Note      string
}

// UPI returns a upi://pay intent link.
func UPI(p Payment) string {
	currency := p.Currency
	if currency == "" {
		currency = "INR"
	}

	params := []string{
		"pa=" + escape(p.PayeeVPA),
		"pn=" + escape(p.PayeeName),
		"am=" + FormatAmount(p.Amount),
		"cu=" + escape(currency),
	}
	if p.Note != "" {
		params = append(params, "tn="+escape(p.Note))
	}
	return "upi://pay?" + strings.Join(params, "&")
}

// FormatAmount prints whole rupees without decimals and anything else with
// two decimals.
func FormatAmount(amount float64) string {
	if amount == float64(int64(amount)) {
		return strconv.FormatInt(int64(amount), 10)
	}
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// MessageLine is one row of the order text.
type MessageLine struct {
	Name      string
	Quantity  int
	LineTotal float64
}

// Message is everything OrderMessage renders.
type Message struct {
	RestaurantName string
	OrderID        string
	CustomerName   string
	Phone          string
	Address        string
	DeliveryDate   string
	DeliveryTime   string
	Lines          []MessageLine
	DeliveryCharge float64
	Total          float64
}

// OrderMessage renders the order text the kitchen receives on WhatsApp.
func OrderMessage(m Message) string {
	var b strings.Builder

	fmt.Fprintf(&b, "New %s Order 🍱\n", m.RestaurantName)
	if m.OrderID != "" {
		fmt.Fprintf(&b, "Order ID: %s\n", m.OrderID)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Name: %s\n", m.CustomerName)
	fmt.Fprintf(&b, "Phone: +91%s\n", m.Phone)
	fmt.Fprintf(&b, "Address: %s\n", m.Address)
	b.WriteString("\n")
	fmt.Fprintf(&b, "📅 Delivery Date: %s\n", m.DeliveryDate)
	fmt.Fprintf(&b, "🕐 Delivery Time: %s\n", m.DeliveryTime)
	b.WriteString("\n")
	b.WriteString("Order Details:\n")
	for _, l := range m.Lines {
		fmt.Fprintf(&b, "%dx %s - ₹%s\n", l.Quantity, l.Name, FormatAmount(l.LineTotal))
	}
	b.WriteString("\n")
	if m.DeliveryCharge > 0 {
		fmt.Fprintf(&b, "Delivery: ₹%s\n", FormatAmount(m.DeliveryCharge))
	}
	fmt.Fprintf(&b, "Total: ₹%s\n", FormatAmount(m.Total))
	b.WriteString("\n")
	b.WriteString("Please confirm the order and delivery time. Thank you!")

	return b.String()
}

// escape percent-encodes a query value with %20 for spaces, which both
// WhatsApp and UPI apps decode.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
