package models

const (
    RoleAdmin = "admin"
    RoleUser  = "user"
)

// User represents an account known to the service. Accounts are provisioned by the
// authentication provider; this service only reads them.
type User struct {
    ID    uint   `gorm:"primaryKey" json:"id"`
    Name  string `gorm:"type:varchar(100);not null" json:"name"`
    Email string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
    Role  string `gorm:"type:varchar(20);not null;default:user" json:"role"`
}

// IsAdmin reports whether the user holds the administrator role
func (u User) IsAdmin() bool {
    return u.Role == RoleAdmin
}
