package domain

import (
	"errors"
	"time"
)

// ReportDraft is the state of one report form: the candidate coordinate, the
// description and the last place-search results. The three fields are mutated
// independently; nothing orders them except the presence check on submit.
type ReportDraft struct {
	ID              string         `json:"id"`
	UserID          string         `json:"user_id,omitempty"`
	Coordinate      *Coordinate    `json:"coordinate,omitempty"`
	Description     string         `json:"description"`
	SearchResults   []SearchResult `json:"search_results"`
	CurrentLocation *Coordinate    `json:"current_location,omitempty"`
	View            MapView        `json:"view"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// NewReportDraft returns an empty draft showing the default world view.
func NewReportDraft(id, userID string) *ReportDraft {
	return &ReportDraft{
		ID:            id,
		UserID:        userID,
		SearchResults: []SearchResult{},
		View:          DefaultView(),
		UpdatedAt:     time.Now().UTC(),
	}
}

// ApplyPosition records a resolved device position as both the initial
// coordinate and the map focus.
func (d *ReportDraft) ApplyPosition(p Coordinate) {
	d.CurrentLocation = &p
	c := p
	d.Coordinate = &c
	d.View = MapView{Center: p, Zoom: ZoomHaveLocation}
	d.touch()
}

// ApplyFallback falls back to the default center when no position is available.
func (d *ReportDraft) ApplyFallback() {
	p := DefaultCenter
	d.CurrentLocation = &p
	c := DefaultCenter
	d.Coordinate = &c
	d.View = DefaultView()
	d.touch()
}

// ReplaceResults swaps the result list for a new search response.
func (d *ReportDraft) ReplaceResults(results []SearchResult) {
	if results == nil {
		results = []SearchResult{}
	}
	d.SearchResults = results
	d.touch()
}

// SelectResult takes the coordinate of item and clears the result list.
// A malformed lat or lon leaves the coordinate unset.
func (d *ReportDraft) SelectResult(item SearchResult) {
	if c, ok := item.Coordinate(); ok {
		d.Coordinate = &c
	} else {
		d.Coordinate = nil
	}
	d.SearchResults = []SearchResult{}
	d.touch()
}

// SelectOnMap overwrites the coordinate with a clicked point.
func (d *ReportDraft) SelectOnMap(p Coordinate) {
	d.Coordinate = &p
	d.touch()
}

// SetDescription replaces the description text.
func (d *ReportDraft) SetDescription(text string) {
	d.Description = text
	d.touch()
}

// Report builds the record to insert, or ErrMissingFields.
func (d *ReportDraft) Report() (*Report, error) {
	if d.Coordinate == nil {
		return nil, errors.Join(ErrMissingFields, errors.New("coordinate is not set"))
	}
	return NewReport(d.UserID, *d.Coordinate, d.Description)
}

func (d *ReportDraft) touch() { d.UpdatedAt = time.Now().UTC() }

// NewReport validates presence of every field and returns an unsaved report.
func NewReport(userID string, at Coordinate, description string) (*Report, error) {
	switch {
	case userID == "":
		return nil, errors.Join(ErrMissingFields, errors.New("user id is empty"))
	case description == "":
		return nil, errors.Join(ErrMissingFields, errors.New("description is empty"))
	}
	return &Report{
		UserID:      userID,
		Lat:         at.Lat,
		Lng:         at.Lng,
		Description: description,
	}, nil
}
