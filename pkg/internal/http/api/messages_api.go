package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/poynterhq/poynter/pkg/internal/http/exts"
	"github.com/poynterhq/poynter/pkg/internal/services"
)

// sendRealtimeMessage relays free-text chat to every viewer of a
// space, outside the fragment-refresh system.
func sendRealtimeMessage(c *fiber.Ctx) error {
	if _, err := ensureAuthenticated(c); err != nil {
		return err
	}

	var data struct {
		Space   string `json:"space" validate:"required"`
		Message string `json:"message" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	message := strings.TrimSpace(data.Message)
	if len(message) > 0 {
		Hub.Broadcast(data.Space, services.ChatMessage{Message: message})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
