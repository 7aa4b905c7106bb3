package domain

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID       ID              `json:"id,omitempty"`
	Login    string          `json:"login"`
	Password string          `json:"password,omitempty"`
	Name     string          `json:"name,omitempty"`
	Email    string          `json:"email,omitempty"`
	Role     Role            `json:"role,omitempty"`
	Pricing  PricingCategory `json:"pricing,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type Credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AuthResult is the canonical shape of every authentication response,
// whatever the backend returned.
type AuthResult struct {
	User  *User
	Token string
}
