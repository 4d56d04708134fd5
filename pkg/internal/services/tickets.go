package services

import (
	"errors"

	"github.com/poynterhq/poynter/pkg/internal/database"
	"github.com/poynterhq/poynter/pkg/internal/models"
	"gorm.io/gorm"
)

// ListSpaceTickets returns the space's non-archived tickets in
// creation order, the set shown on the board.
func ListSpaceTickets(space models.Space) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := database.C.
		Where("space_id = ? AND archived = ?", space.ID, false).
		Order("id ASC").
		Find(&tickets).Error; err != nil {
		return tickets, err
	}
	return tickets, nil
}

func GetSpaceTicket(space models.Space, ticketId uint) (models.Ticket, error) {
	var ticket models.Ticket
	if err := database.C.
		Where("id = ? AND space_id = ?", ticketId, space.ID).
		First(&ticket).Error; err != nil {
		return ticket, err
	}
	return ticket, nil
}

// GetActiveTicket returns the space's active ticket, or nil when no
// ticket is currently being voted on.
func GetActiveTicket(space models.Space) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := database.C.
		Where("space_id = ? AND active = ?", space.ID, true).
		First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func NewTicket(space models.Space, url, title string) (models.Ticket, error) {
	ticket := models.Ticket{
		URL:     url,
		Title:   title,
		SpaceID: space.ID,
	}
	if err := database.C.Create(&ticket).Error; err != nil {
		return ticket, err
	}
	return ticket, nil
}

// ActivateTicket toggles whether a ticket is the one being voted on.
// All other active flags in the space are cleared first, so at most
// one ticket is active at any time. Activating a closed ticket reopens
// it; a ticket cannot be both active and closed.
func ActivateTicket(space models.Space, ticket models.Ticket) (models.Ticket, error) {
	wasActive := ticket.IsActive()

	err := database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Ticket{}).
			Where("space_id = ?", space.ID).
			Update("active", nil).Error; err != nil {
			return err
		}

		next := !wasActive
		ticket.Active = &next
		if next {
			ticket.Closed = false
		}

		return tx.Model(&models.Ticket{}).
			Where("id = ?", ticket.ID).
			Updates(map[string]any{
				"active": ticket.Active,
				"closed": ticket.Closed,
			}).Error
	})

	return ticket, err
}

var updateTicketClosed = func(ticket models.Ticket) error {
	return database.C.Model(&models.Ticket{}).
		Where("id = ?", ticket.ID).
		Update("closed", ticket.Closed).Error
}

// ToggleTicket opens or closes voting on a ticket. The ticket stays
// active when closed so the vote just held remains visible on the
// board. Closing captures a snapshot before the caller broadcasts.
func ToggleTicket(space models.Space, ticket models.Ticket, tallies *TallyStore) (models.Ticket, error) {
	ticket.Closed = !ticket.Closed
	if err := updateTicketClosed(ticket); err != nil {
		return ticket, err
	}

	if ticket.Closed {
		if _, err := persistSnapshot(space, tallies.ReadVotes(space.Slug)); err != nil {
			return ticket, err
		}
	}

	return ticket, nil
}

// ArchiveTickets clears the board for the next session: every
// non-archived ticket is marked archived, distinct from closed.
func ArchiveTickets(space models.Space) (int64, error) {
	tx := database.C.Model(&models.Ticket{}).
		Where("space_id = ? AND archived = ?", space.ID, false).
		Updates(map[string]any{
			"archived": true,
			"active":   nil,
		})
	return tx.RowsAffected, tx.Error
}
