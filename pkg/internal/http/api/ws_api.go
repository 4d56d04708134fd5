package api

import (
	"errors"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/poynterhq/poynter/pkg/internal/services"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// requireKnownSpace rejects the upgrade before a session ever joins a
// group; unknown spaces are a loud not-found, not an empty board.
func requireKnownSpace(c *fiber.Ctx) error {
	if _, err := services.GetSpaceBySlug(c.Params("space")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no such space")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.Next()
}

// listenSpaceBroadcast runs one connection session: join the space's
// group, relay every delivered payload verbatim, leave on disconnect.
// The subscriber leaves the group before its queue closes, so no
// broadcast attempts delivery to a dead connection.
func listenSpaceBroadcast(c *websocket.Conn) {
	slug := c.Params("space")

	sub := services.NewSubscriber()
	Hub.Join(slug, sub)
	log.Debug().Str("space", slug).Msg("A viewer joined the space broadcast...")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for payload := range sub.Outbound() {
			if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}()

	defer func() {
		Hub.Leave(slug, sub)
		sub.Close()
		<-done
		log.Debug().Str("space", slug).Msg("A viewer left the space broadcast...")
	}()

	// Inbound traffic is ignored; the read loop only notices closure.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
