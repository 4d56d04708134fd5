package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/poynterhq/poynter/pkg/internal/http/exts"
	"github.com/poynterhq/poynter/pkg/internal/models"
	"github.com/poynterhq/poynter/pkg/internal/services"
	"gorm.io/gorm"
)

func resolveSpace(c *fiber.Ctx) (models.Space, error) {
	space, err := services.GetSpaceBySlug(c.Params("space"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return space, fiber.NewError(fiber.StatusNotFound, "no such space")
		}
		return space, fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return space, nil
}

func listSpaces(c *fiber.Ctx) error {
	spaces, err := services.ListOpenSpaces()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	projects, err := services.ListProjects()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"projects":    projects,
		"open_spaces": spaces,
	})
}

func getSpaceBoard(c *fiber.Ctx) error {
	space, err := resolveSpace(c)
	if err != nil {
		return err
	}

	tickets, err := services.ListSpaceTickets(space)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	active, err := services.GetActiveTicket(space)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	sheet := Tallies.ReadVotes(space.Slug)
	members, allVoted := services.BuildBoardMembers(space, active, sheet)

	return c.JSON(fiber.Map{
		"space":         space,
		"active_ticket": active,
		"tickets":       tickets,
		"members":       members,
		"all_voted":     allVoted,
		"tallies":       sheet.WithAverages(),
		"choices":       services.VotingChoices,
	})
}

func toggleSpace(c *fiber.Ctx) error {
	if _, err := ensureAuthenticated(c); err != nil {
		return err
	}
	space, err := resolveSpace(c)
	if err != nil {
		return err
	}

	space, err = services.ToggleSpace(space, Tallies)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	_ = Dispatcher.Dispatch(space.Slug, services.OpSpaceToggle)

	return c.JSON(space)
}

func toggleMembership(c *fiber.Ctx) error {
	username, err := ensureAuthenticated(c)
	if err != nil {
		return err
	}
	space, err := resolveSpace(c)
	if err != nil {
		return err
	}

	joined, err := services.ToggleMembership(space, username)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	_ = Dispatcher.Dispatch(space.Slug, services.OpMemberToggle)

	return c.JSON(fiber.Map{"joined": joined})
}

func bootMembers(c *fiber.Ctx) error {
	if _, err := ensureAuthenticated(c); err != nil {
		return err
	}
	space, err := resolveSpace(c)
	if err != nil {
		return err
	}

	var data struct {
		Usernames []string `json:"usernames" validate:"required"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.BootMembers(space, data.Usernames); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	_ = Dispatcher.Dispatch(space.Slug, services.OpMemberBoot)

	return c.SendStatus(fiber.StatusNoContent)
}

func getSpaceTally(c *fiber.Ctx) error {
	space, err := resolveSpace(c)
	if err != nil {
		return err
	}

	return c.JSON(Tallies.ReadVotes(space.Slug).WithAverages())
}

func clearSpaceTally(c *fiber.Ctx) error {
	if _, err := ensureAuthenticated(c); err != nil {
		return err
	}
	space, err := resolveSpace(c)
	if err != nil {
		return err
	}

	Tallies.Clear(space.Slug)
	Dispatcher.DispatchBoardRefresh(space.Slug)

	return c.SendStatus(fiber.StatusNoContent)
}
