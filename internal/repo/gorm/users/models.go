package usersgorm

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is the slice of the ERP users table the workflow engine reads to
// display who created, updated or transitioned a document.
type User struct {
	ID        string `gorm:"primaryKey;size:64"`
	FirstName string `gorm:"size:100"`
	LastName  string `gorm:"size:100"`
	Email     string `gorm:"size:200;uniqueIndex"`
	Role      string `gorm:"size:64;index"`
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string { return "users" }

// DisplayName joins first and last name, falling back to the email.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{})
}
