package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poynterhq/poynter/pkg/internal/models"
)

func TestExtractTitle(t *testing.T) {
	cases := []struct {
		name string
		page string
		want string
	}{
		{"plain", "<html><head><title>PROJ-42: Fix login</title></head></html>", "PROJ-42: Fix login"},
		{"surrounding whitespace", "<title>\n  Spaced out  \n</title>", "Spaced out"},
		{"no title tag", "<html><body>nothing here</body></html>", ""},
		{"unterminated", "<title>never closed", ""},
		{"empty page", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractTitle(tc.page); got != tc.want {
				t.Fatalf("extractTitle = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEnrichTicketTitleRejectsErrorPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<html><head><title>Page not found</title></head></html>")
	}))
	defer srv.Close()

	ticket := &models.Ticket{URL: srv.URL}
	if err := EnrichTicketTitle(ticket); err == nil {
		t.Fatal("an error page must not enrich the title")
	}
	if len(ticket.Title) != 0 {
		t.Fatalf("title = %q, want empty", ticket.Title)
	}
}

func TestEnrichTicketTitleSkipsTitledTickets(t *testing.T) {
	ticket := &models.Ticket{URL: "http://unreachable.invalid", Title: "set by hand"}
	if err := EnrichTicketTitle(ticket); err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if ticket.Title != "set by hand" {
		t.Fatalf("title = %q, want untouched", ticket.Title)
	}
}
