package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/poynterhq/poynter/pkg/internal/http/exts"
	"github.com/poynterhq/poynter/pkg/internal/models"
	"github.com/poynterhq/poynter/pkg/internal/services"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func resolveTicket(c *fiber.Ctx, space models.Space) (models.Ticket, error) {
	ticketId, _ := c.ParamsInt("ticket")

	ticket, err := services.GetSpaceTicket(space, uint(ticketId))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ticket, fiber.NewError(fiber.StatusNotFound, "no such ticket in this space")
		}
		return ticket, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return ticket, nil
}

func createTicket(c *fiber.Ctx) error {
	if _, err := ensureAuthenticated(c); err != nil {
		return err
	}
	space, err := resolveSpace(c)
	if err != nil {
		return err
	}

	var data struct {
		URL   string `json:"url" validate:"required,url"`
		Title string `json:"title"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	ticket, err := services.NewTicket(space, data.URL, data.Title)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	// Title enrichment is best-effort; the board shows the URL until a
	// title arrives, and the moderator can always set one manually.
	if err := services.EnrichTicketTitle(&ticket); err != nil {
		log.Warn().Err(err).Uint("ticket", ticket.ID).Msg("Unable to enrich ticket title...")
	}

	_ = Dispatcher.Dispatch(space.Slug, services.OpTicketCreate)

	return c.JSON(ticket)
}

func activateTicket(c *fiber.Ctx) error {
	if _, err := ensureAuthenticated(c); err != nil {
		return err
	}
	space, err := resolveSpace(c)
	if err != nil {
		return err
	}
	ticket, err := resolveTicket(c, space)
	if err != nil {
		return err
	}

	ticket, err = services.ActivateTicket(space, ticket)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	_ = Dispatcher.Dispatch(space.Slug, services.OpTicketActivate)

	return c.JSON(ticket)
}

func toggleTicket(c *fiber.Ctx) error {
	if _, err := ensureAuthenticated(c); err != nil {
		return err
	}
	space, err := resolveSpace(c)
	if err != nil {
		return err
	}
	ticket, err := resolveTicket(c, space)
	if err != nil {
		return err
	}

	ticket, err = services.ToggleTicket(space, ticket, Tallies)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	_ = Dispatcher.Dispatch(space.Slug, services.OpTicketToggle)

	return c.JSON(ticket)
}

func archiveTickets(c *fiber.Ctx) error {
	if _, err := ensureAuthenticated(c); err != nil {
		return err
	}
	space, err := resolveSpace(c)
	if err != nil {
		return err
	}

	affected, err := services.ArchiveTickets(space)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	_ = Dispatcher.Dispatch(space.Slug, services.OpTicketToggle)

	return c.JSON(fiber.Map{"archived": affected})
}
