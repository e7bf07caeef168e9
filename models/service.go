package models

import (
	"time"

	"gorm.io/gorm"
)

type Service struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"uniqueIndex;size:100;not null"`
	NameNe        string    `json:"name_ne" gorm:"size:100"`
	Description   string    `json:"description" gorm:"type:text"`
	DescriptionNe string    `json:"description_ne" gorm:"type:text"`
	DefaultPrice  float64   `json:"default_price" gorm:"type:decimal(10,2);default:0"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeDelete detaches bookings from the service and drops provider offerings.
// Bookings themselves are kept with a null service reference.
func (s *Service) BeforeDelete(tx *gorm.DB) error {
	if err := tx.Model(&Booking{}).Where("service_id = ?", s.ID).Update("service_id", nil).Error; err != nil {
		return err
	}
	return tx.Exec("DELETE FROM provider_services WHERE service_id = ?", s.ID).Error
}
