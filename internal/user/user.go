package user

import "time"

// Application roles. Exactly one per profile; the role is authoritative
// server-side and the SPA only reads it to gate navigation.
const (
	RoleClient      = "client"
	RoleVendeur     = "vendeur"
	RoleAdminSite   = "admin_site"
	RoleAdminGlobal = "admin_global"
)

// RoleValide reports whether r is a known role.
func RoleValide(r string) bool {
	switch r {
	case RoleClient, RoleVendeur, RoleAdminSite, RoleAdminGlobal:
		return true
	}
	return false
}

// User is the users GORM model.
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Email        string    `gorm:"uniqueIndex;size:128;not null"`
	Nom          string    `gorm:"size:128"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	PasswordSalt string    `gorm:"size:64;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:'client'"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}
