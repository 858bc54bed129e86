package events

import (
	"strconv"
	"time"

	"github.com/Skotchmaster/nexus_market/internal/models"
)

const (
	TopicProducts = "market.products"
	TopicUsers    = "market.users"
)

const (
	ProductCreated = "product_created"
	ProductDeleted = "product_deleted"
	UserRegistered = "user_registered"
)

type ProductEvent struct {
	Type      string          `json:"type"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Category  models.Category `json:"category,omitempty"`
	Seller    string          `json:"seller,omitempty"`
	At        time.Time       `json:"at"`
}

type UserEvent struct {
	Type     string    `json:"type"`
	UserID   uint      `json:"user_id"`
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}

func NewProductCreated(p models.Product) ProductEvent {
	return ProductEvent{
		Type:      ProductCreated,
		ProductID: p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Seller:    p.WhatsAppNumber,
		At:        time.Now().UTC(),
	}
}

func NewProductDeleted(id uint) ProductEvent {
	return ProductEvent{Type: ProductDeleted, ProductID: id, At: time.Now().UTC()}
}

func NewUserRegistered(u models.User) UserEvent {
	return UserEvent{Type: UserRegistered, UserID: u.ID, Username: u.Username, At: time.Now().UTC()}
}

// Key partitions events of one entity onto the same partition.
func Key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
