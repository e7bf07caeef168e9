package models

// Tables lists every model migrated at startup, parents before children.
var Tables = []interface{}{
	&User{},
	&Service{},
	&ProviderProfile{},
	&AvailabilitySlot{},
	&Booking{},
	&Review{},
}
