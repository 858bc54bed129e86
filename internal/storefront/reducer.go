package storefront

import (
	"slices"

	"github.com/Skotchmaster/nexus_market/internal/models"
)

type Action interface {
	apply(State) State
}

type ProductsLoaded struct{ Products []models.Product }

type LoggedIn struct {
	User  models.SessionUser
	Token string
}

type LoggedOut struct{}

type ThemeToggled struct{}

type AddedToCart struct{ Product models.Product }

type QuantityChanged struct {
	ProductID uint
	Delta     int
}

type RemovedFromCart struct{ ProductID uint }

type CategorySelected struct{ Category models.Category }

type PanelToggled struct{ Panel Panel }

// CartRestored replaces the cart wholesale, e.g. when loading saved state.
type CartRestored struct{ Cart []models.CartItem }

// Reduce never mutates s; slices are copied before they change.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (a ProductsLoaded) apply(s State) State {
	s.Products = slices.Clone(a.Products)
	return s
}

func (a LoggedIn) apply(s State) State {
	u := a.User
	s.Session = &u
	s.Token = a.Token
	s.Panels.Login = false
	return s
}

func (LoggedOut) apply(s State) State {
	s.Session = nil
	s.Token = ""
	s.Panels.AdminPanel = false
	return s
}

func (ThemeToggled) apply(s State) State {
	s.DarkMode = !s.DarkMode
	return s
}

func (a AddedToCart) apply(s State) State {
	cart := slices.Clone(s.Cart)
	i := slices.IndexFunc(cart, func(it models.CartItem) bool { return it.ID == a.Product.ID })
	if i >= 0 {
		cart[i].Quantity++
	} else {
		cart = append(cart, models.CartItem{Product: a.Product, Quantity: 1})
	}
	s.Cart = cart
	s.Panels.Cart = true
	return s
}

func (a QuantityChanged) apply(s State) State {
	cart := slices.Clone(s.Cart)
	for i := range cart {
		if cart[i].ID == a.ProductID {
			cart[i].Quantity = max(1, cart[i].Quantity+a.Delta)
		}
	}
	s.Cart = cart
	return s
}

func (a RemovedFromCart) apply(s State) State {
	s.Cart = slices.DeleteFunc(slices.Clone(s.Cart), func(it models.CartItem) bool {
		return it.ID == a.ProductID
	})
	return s
}

func (a CategorySelected) apply(s State) State {
	switch a.Category {
	case models.CategoryAll, models.CategoryCPM, models.CategoryMarketplace:
		s.Category = a.Category
	}
	return s
}

func (a PanelToggled) apply(s State) State {
	switch a.Panel {
	case PanelCart:
		s.Panels.Cart = !s.Panels.Cart
	case PanelMenu:
		s.Panels.Menu = !s.Panels.Menu
	case PanelLogin:
		s.Panels.Login = !s.Panels.Login
	case PanelAdmin:
		s.Panels.AdminPanel = !s.Panels.AdminPanel
	}
	return s
}

func (a CartRestored) apply(s State) State {
	cart := make([]models.CartItem, 0, len(a.Cart))
	for _, it := range a.Cart {
		if it.Quantity < 1 {
			it.Quantity = 1
		}
		cart = append(cart, it)
	}
	s.Cart = cart
	return s
}
