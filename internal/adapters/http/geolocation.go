package http

import (
	"context"
	"fmt"

	"github.com/samirrijal/crimereport/internal/core/domain"
)

// locateRequest is what the page reports after asking the browser for its
// position: exactly one of Position, Error or Unsupported is meaningful.
type locateRequest struct {
	Position    *domain.Coordinate `json:"position"`
	Error       string             `json:"error"`
	Unsupported bool               `json:"unsupported"`
}

// browserGeolocation implements ports.Geolocator from a page report.
type browserGeolocation struct {
	report locateRequest
}

func (g browserGeolocation) CurrentPosition(context.Context) (domain.Coordinate, error) {
	switch {
	case g.report.Unsupported:
		return domain.Coordinate{}, domain.ErrGeolocationUnsupported
	case g.report.Position != nil:
		return *g.report.Position, nil
	case g.report.Error != "":
		return domain.Coordinate{}, fmt.Errorf("%w: %s", domain.ErrGeolocationFailed, g.report.Error)
	default:
		return domain.Coordinate{}, domain.ErrGeolocationFailed
	}
}
