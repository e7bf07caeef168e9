package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	ReligionHindu    = "hindu"
	ReligionBuddhist = "buddhist"
)

// ProviderProfile is the bookable profile of a provider-role user.
type ProviderProfile struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	UserID             uint      `json:"user_id" gorm:"uniqueIndex;not null"`
	User               *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ReligionType       string    `json:"religion_type" gorm:"size:10;not null"`
	ExperienceYears    int       `json:"experience_years" gorm:"default:0"`
	Location           string    `json:"location" gorm:"size:100"`
	ShortDescription   string    `json:"short_description" gorm:"type:text"`
	ShortDescriptionNe string    `json:"short_description_ne" gorm:"type:text"`
	PricePerService    float64   `json:"price_per_service" gorm:"type:decimal(10,2);default:0"`
	Verified           bool      `json:"verified" gorm:"default:false"`
	Services           []Service `json:"services,omitempty" gorm:"many2many:provider_services;"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func ValidReligion(value string) bool {
	return value == ReligionHindu || value == ReligionBuddhist
}

// BeforeCreate hook to validate religion type
func (p *ProviderProfile) BeforeCreate(tx *gorm.DB) error {
	if !ValidReligion(p.ReligionType) {
		return fmt.Errorf("religion type %q is not supported", p.ReligionType)
	}
	return nil
}

// BeforeDelete removes the provider's reviews, bookings and slots explicitly.
func (p *ProviderProfile) BeforeDelete(tx *gorm.DB) error {
	if err := tx.Where("provider_id = ?", p.ID).Delete(&Review{}).Error; err != nil {
		return err
	}
	if err := tx.Where("provider_id = ?", p.ID).Delete(&Booking{}).Error; err != nil {
		return err
	}
	if err := tx.Where("provider_id = ?", p.ID).Delete(&AvailabilitySlot{}).Error; err != nil {
		return err
	}
	return tx.Model(p).Association("Services").Clear()
}
