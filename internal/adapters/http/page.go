package http

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/crimereport/internal/core/domain"
)

//go:embed templates/form.html
var formHTML string

var formTemplate = template.Must(template.New("form").Parse(formHTML))

type formPage struct {
	UserID      string
	DefaultView domain.MapView
	ZoomLocated int
}

// FormPageHandler renders the report form. The userID query parameter is
// handed to the page, which opens its draft through the API.
func FormPageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		err := formTemplate.Execute(&buf, formPage{
			UserID:      c.Query("userID"),
			DefaultView: domain.DefaultView(),
			ZoomLocated: domain.ZoomHaveLocation,
		})
		if err != nil {
			return errInternal(c, "render form")
		}
		c.Set("Content-Type", "text/html; charset=utf-8")
		c.Set("Cache-Control", "no-store")
		return c.Send(buf.Bytes())
	}
}
