// Package storefront holds the client-side application state of the shop:
// session, catalog snapshot, cart, open panels, category filter and theme.
// Reduce is pure; Store adds locking and persistence on top of it.
package storefront

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/nexus_market/internal/checkout"
	"github.com/Skotchmaster/nexus_market/internal/models"
)

type Panel int

const (
	PanelCart Panel = iota
	PanelMenu
	PanelLogin
	PanelAdmin
)

type Panels struct {
	Cart       bool `json:"cart"`
	Menu       bool `json:"menu"`
	Login      bool `json:"login"`
	AdminPanel bool `json:"admin_panel"`
}

type State struct {
	Session  *models.SessionUser `json:"session,omitempty"`
	Token    string              `json:"-"`
	Products []models.Product    `json:"products"`
	Cart     []models.CartItem   `json:"cart"`
	Panels   Panels              `json:"panels"`
	Category models.Category     `json:"category"`
	DarkMode bool                `json:"dark_mode"`
}

func Initial() State {
	return State{Category: models.CategoryAll}
}

// VisibleProducts applies the category filter, keeping catalog order.
func (s State) VisibleProducts() []models.Product {
	if s.Category == models.CategoryAll || s.Category == "" {
		return s.Products
	}
	out := make([]models.Product, 0, len(s.Products))
	for _, p := range s.Products {
		if p.Category == s.Category {
			out = append(out, p)
		}
	}
	return out
}

func (s State) CartTotal() decimal.Decimal {
	return checkout.Total(s.Cart)
}

func (s State) CartCount() int {
	n := 0
	for _, item := range s.Cart {
		n += item.Quantity
	}
	return n
}

func (s State) IsAdmin() bool {
	return s.Session != nil && s.Session.IsAdmin()
}

func (s State) FindProduct(id uint) (models.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
