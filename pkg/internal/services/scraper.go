package services

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/poynterhq/poynter/pkg/internal/database"
	"github.com/poynterhq/poynter/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

const scrapeTimeout = 15 * time.Second

// EnrichTicketTitle tries to fill a ticket's title from the remote
// page it links to. Invoked by the operation layer as a separate step
// after creation; failure is non-fatal since the moderator can always
// enter the title manually.
func EnrichTicketTitle(ticket *models.Ticket) error {
	if len(ticket.Title) > 0 {
		return nil
	}

	log.Debug().Str("url", ticket.URL).Msg("Fetching ticket page for title...")

	client := &http.Client{Timeout: scrapeTimeout}
	resp, err := client.Get(ticket.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch ticket page: %v", err)
	}
	defer resp.Body.Close()

	// Error pages carry titles too ("Page not found"); never persist one.
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("ticket page responded with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read ticket page: %v", err)
	}

	title := extractTitle(string(body))
	if len(title) == 0 {
		return fmt.Errorf("no title tag in ticket page")
	}

	ticket.Title = title
	return database.C.Model(&models.Ticket{}).
		Where("id = ?", ticket.ID).
		Update("title", title).Error
}

func extractTitle(page string) string {
	start := strings.Index(page, "<title>")
	if start < 0 {
		return ""
	}
	start += len("<title>")
	end := strings.Index(page[start:], "</title>")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(page[start : start+end])
}
