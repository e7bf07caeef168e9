package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BookingID  uint      `json:"booking_id" gorm:"uniqueIndex;not null"`
	CustomerID uint      `json:"customer_id" gorm:"index;not null"`
	Customer   *User     `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	ProviderID uint      `json:"provider_id" gorm:"index;not null"`
	Rating     int       `json:"rating" gorm:"not null"`
	Comment    string    `json:"comment" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// BeforeCreate hook to validate rating
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if !ValidRating(r.Rating) {
		return fmt.Errorf("rating %d out of range", r.Rating)
	}
	return nil
}

// HasExistingReview reports whether the booking already carries a review.
func (r *Review) HasExistingReview(tx *gorm.DB) (bool, error) {
	var count int64
	err := tx.Model(&Review{}).Where("booking_id = ?", r.BookingID).Count(&count).Error
	return count > 0, err
}
