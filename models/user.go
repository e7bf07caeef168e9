package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	LanguageEnglish = "en"
	LanguageNepali  = "ne"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:254;not null"`
	Password     string    `json:"-" gorm:"not null"`
	FirstName    string    `json:"first_name" gorm:"size:150"`
	LastName     string    `json:"last_name" gorm:"size:150"`
	Phone        string    `json:"phone" gorm:"size:15"`
	Role         Role      `json:"role" gorm:"<-:create;size:20;not null;default:customer"`
	LanguagePref string    `json:"language_pref" gorm:"size:2;default:en"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName falls back to the email when no name is set.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleCustomer
	}
	if u.LanguagePref == "" {
		u.LanguagePref = LanguageEnglish
	}
	return nil
}

// BeforeDelete removes everything the user owns: their bookings and reviews
// as a customer and, for providers, the profile with its own dependents.
func (u *User) BeforeDelete(tx *gorm.DB) error {
	if err := tx.Where("customer_id = ?", u.ID).Delete(&Review{}).Error; err != nil {
		return err
	}
	if err := tx.Where("customer_id = ?", u.ID).Delete(&Booking{}).Error; err != nil {
		return err
	}

	var profiles []ProviderProfile
	if err := tx.Where("user_id = ?", u.ID).Find(&profiles).Error; err != nil {
		return err
	}
	for i := range profiles {
		if err := tx.Delete(&profiles[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
