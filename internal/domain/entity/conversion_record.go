// internal/domain/entity/conversion_record.go
package entity

import (
	"time"

	"pnr-itinerary-service/pkg/pnr"
)

// Conversion sources
const (
	SourceAPI   = "api"
	SourceEmail = "email"
	SourceCLI   = "cli"
)

// ConversionRecord is the audit entry stored for each conversion
type ConversionRecord struct {
	ID                string      `bson:"_id,omitempty" json:"id"`
	Source            string      `bson:"source" json:"source"`
	SourceRef         string      `bson:"sourceRef,omitempty" json:"sourceRef,omitempty"` // email id for mailbox conversions
	InputText         string      `bson:"inputText" json:"inputText"`
	InputBytes        int         `bson:"inputBytes" json:"inputBytes"`
	FlightCount       int         `bson:"flightCount" json:"flightCount"`
	PassengerCount    int         `bson:"passengerCount" json:"passengerCount"`
	Routes            []string    `bson:"routes" json:"routes"` // "KGL-DAR" per segment
	Suspicious        bool        `bson:"suspicious" json:"suspicious"`
	SuspiciousReasons []string    `bson:"suspiciousReasons,omitempty" json:"suspiciousReasons,omitempty"`
	MultiCity         bool        `bson:"multiCity" json:"multiCity"`
	Result            *pnr.Result `bson:"result" json:"result"`
	DurationMs        float64     `bson:"durationMs" json:"durationMs"`
	CreatedAt         time.Time   `bson:"createdAt" json:"createdAt"`
}
