package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/crimereport/internal/core/domain"
)

// draftResponse is returned by every draft operation. Alert is set when the
// page has to show a blocking message.
type draftResponse struct {
	Draft *domain.ReportDraft `json:"draft"`
	Alert *domain.Alert       `json:"alert,omitempty"`
}

type submitResponse struct {
	Report *domain.Report `json:"report,omitempty"`
	Alert  *domain.Alert  `json:"alert"`
}

// draftError maps a repository error to a response.
func draftError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrDraftNotFound) {
		return errNotFound(c, "draft not found or expired")
	}
	LoggerFromCtx(c.UserContext()).Error("draft operation failed", "draft_id", c.Params("id"), "error", err)
	return errInternal(c, "draft store unavailable")
}

// OpenDraftHandler creates a new draft. The user identifier comes from the
// JSON body or the userID query parameter.
func OpenDraftHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			UserID string `json:"user_id"`
		}
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return errBadRequest(c, "invalid request body")
			}
		}
		if req.UserID == "" {
			req.UserID = c.Query("userID")
		}

		d, err := deps.Forms.Open(c.UserContext(), req.UserID)
		if err != nil {
			return draftError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(draftResponse{Draft: d})
	}
}

// GetDraftHandler returns the current draft state.
func GetDraftHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := deps.Forms.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return draftError(c, err)
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(draftResponse{Draft: d})
	}
}

// LocateHandler applies the browser's geolocation outcome to the draft.
func LocateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req locateRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		d, alert, err := deps.Forms.Locate(c.UserContext(), c.Params("id"), browserGeolocation{report: req})
		if err != nil {
			return draftError(c, err)
		}
		return c.JSON(draftResponse{Draft: d, Alert: alert})
	}
}

// SearchDraftHandler runs a place search and stores the results on the draft.
func SearchDraftHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Query string `json:"query"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		d, err := deps.Forms.Search(c.UserContext(), c.Params("id"), req.Query)
		if err != nil {
			return draftError(c, err)
		}
		return c.JSON(draftResponse{Draft: d})
	}
}

// SelectResultHandler takes the coordinate of one search result.
func SelectResultHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Result *domain.SearchResult `json:"result"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Result == nil {
			return errBadRequest(c, "result is required")
		}

		d, err := deps.Forms.SelectResult(c.UserContext(), c.Params("id"), *req.Result)
		if err != nil {
			return draftError(c, err)
		}
		return c.JSON(draftResponse{Draft: d})
	}
}

// SelectOnMapHandler sets the coordinate to a clicked map point.
func SelectOnMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Lat == nil || req.Lng == nil {
			return errBadRequest(c, "lat and lng are required")
		}

		d, err := deps.Forms.SelectOnMap(c.UserContext(), c.Params("id"), domain.Coordinate{Lat: *req.Lat, Lng: *req.Lng})
		if err != nil {
			return draftError(c, err)
		}
		return c.JSON(draftResponse{Draft: d})
	}
}

// SetDescriptionHandler replaces the description text.
func SetDescriptionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			Description string `json:"description"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		d, err := deps.Forms.SetDescription(c.UserContext(), c.Params("id"), req.Description)
		if err != nil {
			return draftError(c, err)
		}
		return c.JSON(draftResponse{Draft: d})
	}
}

// SubmitDraftHandler submits the draft. The alert is always returned; the
// status tells whether a record was stored (201), rejected (422) or the
// store failed (502).
func SubmitDraftHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, alert, err := deps.Forms.Submit(c.UserContext(), c.Params("id"))
		switch {
		case alert == nil:
			return draftError(c, err)
		case errors.Is(err, domain.ErrMissingFields):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(submitResponse{Alert: alert})
		case err != nil:
			return c.Status(fiber.StatusBadGateway).JSON(submitResponse{Alert: alert})
		}
		return c.Status(fiber.StatusCreated).JSON(submitResponse{Report: report, Alert: alert})
	}
}

// DiscardDraftHandler deletes a draft.
func DiscardDraftHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Forms.Discard(c.UserContext(), c.Params("id")); err != nil {
			return draftError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SearchPlacesHandler forwards a free-text query to the place-search service.
func SearchPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		results, err := deps.Places.Search(c.UserContext(), query)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Warn("place search failed", "error", err)
			return errBadGateway(c, "place search failed")
		}

		c.Set("Cache-Control", "public, max-age=300")
		return c.JSON(results)
	}
}

// CreateReportHandler stores one report without a draft.
func CreateReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req struct {
			UserID      string   `json:"user_id"`
			Lat         *float64 `json:"lat"`
			Lng         *float64 `json:"lng"`
			Description string   `json:"description"`
		}
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Lat == nil || req.Lng == nil {
			return errUnprocessable(c, domain.MsgMissingFields)
		}

		report, err := deps.Reports.Create(c.UserContext(), req.UserID, domain.Coordinate{Lat: *req.Lat, Lng: *req.Lng}, req.Description)
		if errors.Is(err, domain.ErrMissingFields) {
			return errUnprocessable(c, domain.MsgMissingFields)
		}
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("create report failed", "error", err)
			return errBadGateway(c, domain.MsgSubmitFailed)
		}
		return c.Status(fiber.StatusCreated).JSON(report)
	}
}

// ListReportsHandler lists reports newest first, or nearest first when
// lat, lng and radius are given.
func ListReportsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") != "" || c.Query("lng") != "" {
			return nearbyReports(c, deps)
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 50)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		reports, total, err := deps.Reports.List(c.UserContext(), limit, offset)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("list reports failed", "error", err)
			return errBadGateway(c, "record store unavailable")
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: reports, Pagination: pg})
	}
}

func nearbyReports(c *fiber.Ctx, deps *Dependencies) error {
	if c.Query("lat") == "" || c.Query("lng") == "" {
		return errBadRequest(c, "lat and lng are required together")
	}
	lat := c.QueryFloat("lat", 0)
	lng := c.QueryFloat("lng", 0)
	radius := c.QueryFloat("radius", 1000)
	limit := c.QueryInt("limit", 50)

	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return errBadRequest(c, "lat/lng out of range")
	}
	if radius <= 0 || radius > 50000 {
		return errBadRequest(c, "radius must be between 1 and 50000 meters")
	}

	reports, err := deps.Reports.ListNear(c.UserContext(), domain.Coordinate{Lat: lat, Lng: lng}, radius, limit)
	if err != nil {
		LoggerFromCtx(c.UserContext()).Error("list nearby reports failed", "error", err)
		return errBadGateway(c, "record store unavailable")
	}
	return c.JSON(reports)
}
