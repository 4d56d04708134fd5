package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/poynterhq/poynter/pkg/internal/services"
	"gorm.io/gorm"
)

// getFragment is the client-pull read path: after a refresh signal,
// each viewer fetches the named fragment here so per-viewer content
// is derived on its own request.
func getFragment(c *fiber.Ctx) error {
	fragment := services.Fragment(c.Params("fragment"))

	html, err := Renderer.Render(fragment, c.Params("space"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no such space")
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}
