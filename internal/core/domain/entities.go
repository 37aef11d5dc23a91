package domain

import (
	"time"
)

// Report is a submitted crime report as stored in the record store.
type Report struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	Description string    `json:"description"`
	AreaLabel   string    `json:"area_label,omitempty"`
	Distance    *float64  `json:"distance,omitempty"` // computed field
	CreatedAt   time.Time `json:"created_at"`
}

// Location returns the report position.
func (r *Report) Location() Coordinate {
	return Coordinate{Lat: r.Lat, Lng: r.Lng}
}

// AlertKind classifies a user-facing alert.
type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertError   AlertKind = "error"
)

// Alert is a blocking, user-facing message produced by a controller operation.
type Alert struct {
	Kind    AlertKind `json:"kind"`
	Message string    `json:"message"`
}

// User-facing alert messages.
const (
	MsgMissingFields          = "Please fill in all fields"
	MsgSubmitted              = "Data submitted successfully"
	MsgSubmitFailed           = "Error submitting data"
	MsgGeolocationUnsupported = "Geolocation is not supported by this browser."
)

// ReportSubmitted is published after a report has been stored.
type ReportSubmitted struct {
	Report      Report    `json:"report"`
	SubmittedAt time.Time `json:"submitted_at"`
}
