package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/poynterhq/poynter/pkg/internal/services"
)

// Core collaborators, wired in by the entrypoint before Listen.
var (
	Tallies    *services.TallyStore
	Hub        *services.Broadcaster
	Renderer   *services.FragmentRenderer
	Dispatcher *services.Dispatcher
)

// The upstream gateway asserts the caller's identity in this header;
// authentication itself happens outside this service.
const identityHeader = "X-Poynter-User"

func identityMiddleware(c *fiber.Ctx) error {
	if username := c.Get(identityHeader); len(username) > 0 {
		c.Locals("username", username)
	}
	return c.Next()
}

func ensureAuthenticated(c *fiber.Ctx) (string, error) {
	username, ok := c.Locals("username").(string)
	if !ok || len(username) == 0 {
		return "", fiber.NewError(fiber.StatusUnauthorized, "identity required")
	}
	return username, nil
}

func MapAPIs(app *fiber.App, baseURL string) {
	api := app.Group(baseURL, identityMiddleware)
	{
		spaces := api.Group("/spaces")
		{
			spaces.Get("/", listSpaces)
			spaces.Get("/:space", getSpaceBoard)
			spaces.Post("/:space/toggle", toggleSpace)
			spaces.Post("/:space/membership", toggleMembership)
			spaces.Post("/:space/boot", bootMembers)
			spaces.Get("/:space/tally", getSpaceTally)
			spaces.Delete("/:space/tally", clearSpaceTally)

			spaces.Post("/:space/tickets", createTicket)
			spaces.Post("/:space/tickets/archive", archiveTickets)
			spaces.Post("/:space/tickets/:ticket/activate", activateTicket)
			spaces.Post("/:space/tickets/:ticket/toggle", toggleTicket)
		}

		api.Post("/votes", submitVote)
		api.Post("/rt/message", sendRealtimeMessage)

		api.Get("/fragments/:fragment/:space", getFragment)
	}
}

func MapWebsocket(app *fiber.App, baseURL string) {
	ws := app.Group(baseURL, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	ws.Get("/broadcast/:space", requireKnownSpace, websocket.New(listenSpaceBroadcast))
}
