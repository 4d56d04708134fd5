package services

import (
	"testing"

	"github.com/poynterhq/poynter/pkg/internal/models"
)

func TestClosingTicketSnapshotsBeforeAnyBroadcast(t *testing.T) {
	stubToggleSeams(t)

	tallies := NewTallyStore()
	tallies.RecordVote("alpha", 8, "rob", 5)

	hub := NewBroadcaster()
	sub := NewSubscriber()
	hub.Join("alpha", sub)
	dispatcher := NewDispatcher(&stubRenderer{}, hub)

	var snapshots int
	persistSnapshot = func(space models.Space, sheet TallySheet) (models.Snapshot, error) {
		if len(sub.Outbound()) != 0 {
			t.Error("a broadcast went out before the snapshot was persisted")
		}
		snapshots++
		return models.Snapshot{SpaceID: space.ID, Document: sheet.WithAverages()}, nil
	}

	space := models.Space{Slug: "alpha"}
	space.ID = 1
	ticket := models.Ticket{SpaceID: space.ID}
	ticket.ID = 8

	ticket, err := ToggleTicket(space, ticket, tallies)
	if err != nil {
		t.Fatalf("toggle ticket: %v", err)
	}
	if !ticket.Closed {
		t.Fatal("ticket must be closed after the toggle")
	}
	_ = dispatcher.Dispatch(space.Slug, OpTicketToggle)

	if snapshots != 1 {
		t.Fatalf("snapshots = %d, want 1", snapshots)
	}

	// Reopening takes no further snapshot.
	ticket, err = ToggleTicket(space, ticket, tallies)
	if err != nil {
		t.Fatalf("toggle ticket: %v", err)
	}
	if ticket.Closed {
		t.Fatal("ticket must be open after the second toggle")
	}
	if snapshots != 1 {
		t.Fatalf("snapshots = %d, reopening must not snapshot", snapshots)
	}
}
