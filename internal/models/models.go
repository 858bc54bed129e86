package models

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Category string

const (
	CategoryAll         Category = "All"
	CategoryCPM         Category = "CPM"
	CategoryMarketplace Category = "Marketplace"
)

// Valid reports whether c is a category a product can be stored under.
// CategoryAll is a filter value only.
func (c Category) Valid() bool {
	return c == CategoryCPM || c == CategoryMarketplace
}

type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Username string `gorm:"unique;not null"           json:"username"`
	Password string `gorm:"not null"                  json:"-"`
	Role     string `gorm:"not null;default:user"     json:"role"`
}

type Product struct {
	ID             uint     `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name           string   `gorm:"not null"                  json:"name"`
	Price          float64  `gorm:"not null;check:price >= 0" json:"price"`
	Description    string   `json:"description"`
	Image          string   `json:"image"`
	Category       Category `gorm:"type:text;index"           json:"category"`
	WhatsAppNumber string   `gorm:"column:whatsapp_number"    json:"whatsapp_number"`
}

// SessionUser is what login hands back to the client; the password never
// leaves the store.
type SessionUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (u User) Session() SessionUser {
	return SessionUser{ID: u.ID, Username: u.Username, Role: u.Role}
}

func (u SessionUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CartItem lives only on the client. Product fields are flattened in JSON
// next to quantity.
type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}
