// Package checkout turns a cart into a prefilled WhatsApp order link.
package checkout

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/nexus_market/internal/models"
)

const (
	greeting  = "Olá! Gostaria de comprar os seguintes itens:"
	waBaseURL = "https://wa.me/"
)

// Group is every cart item sold by one seller contact.
type Group struct {
	Seller string
	Items  []models.CartItem
}

type Line struct {
	Name     string
	Quantity int
	Subtotal decimal.Decimal
}

type Order struct {
	Seller  string
	Phone   string
	Lines   []Line
	Total   decimal.Decimal
	Message string
	Link    string
	// Skipped lists sellers in the cart that this order does not cover.
	Skipped []string
}

// Groups splits cart by seller contact. Groups and the items inside them keep
// first-seen cart order.
func Groups(cart []models.CartItem) []Group {
	idx := make(map[string]int)
	var groups []Group
	for _, item := range cart {
		i, ok := idx[item.WhatsAppNumber]
		if !ok {
			i = len(groups)
			idx[item.WhatsAppNumber] = i
			groups = append(groups, Group{Seller: item.WhatsAppNumber})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// Compose builds the order for the first seller in the cart. The remaining
// sellers are reported in Order.Skipped. ok is false for an empty cart.
func Compose(cart []models.CartItem) (order Order, ok bool) {
	groups := Groups(cart)
	if len(groups) == 0 {
		return Order{}, false
	}

	order = ComposeGroup(groups[0])
	for _, g := range groups[1:] {
		order.Skipped = append(order.Skipped, g.Seller)
	}
	return order, true
}

func ComposeGroup(g Group) Order {
	o := Order{
		Seller: g.Seller,
		Phone:  Digits(g.Seller),
		Total:  decimal.Zero,
	}

	var b strings.Builder
	b.WriteString(greeting)
	b.WriteString("\n\n")
	for i, item := range g.Items {
		sub := Subtotal(item)
		o.Lines = append(o.Lines, Line{Name: item.Name, Quantity: item.Quantity, Subtotal: sub})
		o.Total = o.Total.Add(sub)

		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(item.Name)
		b.WriteString(" (")
		b.WriteString(strconv.Itoa(item.Quantity))
		b.WriteString("x) - R$ ")
		b.WriteString(FormatMoney(sub))
	}
	b.WriteString("\n\nTotal: R$ ")
	b.WriteString(FormatMoney(o.Total))

	o.Message = b.String()
	o.Link = waBaseURL + o.Phone + "?text=" + EncodeURIComponent(o.Message)
	return o
}

func Subtotal(item models.CartItem) decimal.Decimal {
	return decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Total sums every line of the cart regardless of seller.
func Total(cart []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range cart {
		sum = sum.Add(Subtotal(item))
	}
	return sum
}

func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Digits keeps only ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var uriComponentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent percent-encodes s leaving only the unreserved set
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) as is.
func EncodeURIComponent(s string) string {
	return uriComponentUnescape.Replace(url.QueryEscape(s))
}
