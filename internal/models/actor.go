package models

// Role - роль пользователя на площадке.
type Role string

const (
	ClientRole Role = "client"
	VendorRole Role = "vendor"
	AdminRole  Role = "admin"
)

// Actor - аутентифицированный пользователь, выполняющий операцию.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Page задает limit/offset для списков. Нулевой Limit означает без ограничения.
type Page struct {
	Limit  int
	Offset int
}
