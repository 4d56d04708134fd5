package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/poynterhq/poynter/pkg/internal/http/exts"
	"github.com/poynterhq/poynter/pkg/internal/services"
	"gorm.io/gorm"
)

func submitVote(c *fiber.Ctx) error {
	username, err := ensureAuthenticated(c)
	if err != nil {
		return err
	}

	var data struct {
		Space  string `json:"space" validate:"required"`
		Ticket uint   `json:"ticket" validate:"required"`
		Choice int    `json:"choice" validate:"required,min=1"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	space, err := services.GetSpaceBySlug(data.Space)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no such space")
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	if !services.IsSpaceMember(space, username) {
		return fiber.NewError(fiber.StatusForbidden, "only space members can vote")
	}

	Tallies.RecordVote(space.Slug, data.Ticket, username, data.Choice)

	_ = Dispatcher.Dispatch(space.Slug, services.OpVoteSubmit)

	return c.SendStatus(fiber.StatusNoContent)
}
