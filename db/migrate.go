package db

import (
	"fmt"

	"github.com/meropanditlama/booking-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.Tables...); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	zap.L().Info("migrations applied")
	return nil
}

var defaultServices = []models.Service{
	{
		Name:          "Ghar Puja",
		NameNe:        "घर पूजा",
		Description:   "House warming and purification ceremony for new homes",
		DescriptionNe: "नयाँ घरको लागि घर वार्मिंग र शुद्धीकरण समारोह",
		DefaultPrice:  3000,
	},
	{
		Name:          "Bartabanda",
		NameNe:        "बर्तबन्द",
		Description:   "Sacred thread ceremony for young boys (Bratabandha)",
		DescriptionNe: "जवान केटाहरूको लागि पवित्र धागो समारोह",
		DefaultPrice:  5000,
	},
	{
		Name:          "Bratabandha",
		NameNe:        "ब्रतबन्ध",
		Description:   "Coming of age ceremony and initiation ritual",
		DescriptionNe: "उमेर आगमन समारोह र दीक्षा संस्कार",
		DefaultPrice:  8000,
	},
	{
		Name:          "Buddha Puja",
		NameNe:        "बुद्ध पूजा",
		Description:   "Buddhist prayer and meditation ceremony",
		DescriptionNe: "बौद्ध प्रार्थना र ध्यान समारोह",
		DefaultPrice:  4000,
	},
	{
		Name:          "Wedding Ceremony",
		NameNe:        "विवाह समारोह",
		Description:   "Traditional Hindu or Buddhist wedding rituals and blessings",
		DescriptionNe: "परम्परागत हिन्दू वा बौद्ध विवाह संस्कार र आशीर्वाद",
		DefaultPrice:  15000,
	},
	{
		Name:          "Griha Pravesh",
		NameNe:        "गृह प्रवेश",
		Description:   "House entrance ceremony and blessings for new home",
		DescriptionNe: "नयाँ घरको लागि घर प्रवेश समारोह र आशीर्वाद",
		DefaultPrice:  4500,
	},
	{
		Name:          "Funeral Rites",
		NameNe:        "अन्त्येष्टि संस्कार",
		Description:   "Last rites and funeral ceremonies",
		DescriptionNe: "अन्तिम संस्कार र अन्त्येष्टि समारोह",
		DefaultPrice:  10000,
	},
	{
		Name:          "Satyanarayan Puja",
		NameNe:        "सत्यनारायण पूजा",
		Description:   "Worship of Lord Satyanarayan for prosperity",
		DescriptionNe: "समृद्धिको लागि भगवान सत्यनारायणको पूजा",
		DefaultPrice:  3500,
	},
}

// SeedServices inserts the default service catalog, skipping names that exist.
func SeedServices(db *gorm.DB) (int, error) {
	created := 0
	for _, svc := range defaultServices {
		var existing int64
		if err := db.Model(&models.Service{}).Where("name = ?", svc.Name).Count(&existing).Error; err != nil {
			return created, fmt.Errorf("seed service %s: %w", svc.Name, err)
		}
		if existing > 0 {
			continue
		}

		service := svc
		if err := db.Create(&service).Error; err != nil {
			return created, fmt.Errorf("seed service %s: %w", svc.Name, err)
		}
		created++
	}

	zap.L().Info("service catalog seeded", zap.Int("created", created), zap.Int("total", len(defaultServices)))
	return created, nil
}
