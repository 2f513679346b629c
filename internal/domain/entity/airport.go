package entity

import (
	"time"

	"gorm.io/gorm"

	"pnr-itinerary-service/pkg/pnr"
)

// Airport represents an airport row with its IANA timezone
type Airport struct {
	ID          uint
	AirportCode string
	AirportName string
	CityCode    string
	CityName    string
	CountryName string
	GmtTz       string
	TzName      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt
}

// ToRecord converts the row to the parser's reference record
func (a *Airport) ToRecord() pnr.AirportRecord {
	return pnr.AirportRecord{
		Code:     a.AirportCode,
		City:     a.CityName,
		Country:  a.CountryName,
		Name:     a.AirportName,
		Timezone: a.TzName,
	}
}
