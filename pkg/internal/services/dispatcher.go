package services

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Operation names every state change that can require board fragments
// to be recomputed.
type Operation string

const (
	OpTicketCreate   Operation = "ticket.create"
	OpTicketActivate Operation = "ticket.activate"
	OpTicketToggle   Operation = "ticket.toggle"
	OpSpaceToggle    Operation = "space.toggle"
	OpMemberToggle   Operation = "member.toggle"
	OpMemberBoot     Operation = "member.boot"
	OpVoteSubmit     Operation = "vote.submit"
)

// UpdateProfile lists the fragments an operation affects, split by
// delivery mode. Push fragments are rendered once and sent to every
// viewer; signal fragments are only announced, and each client fetches
// fresh content through its own read path so per-viewer branches never
// have to be derived on the sender.
type UpdateProfile struct {
	Push   []Fragment
	Signal []Fragment
}

// updateProfiles is the single source of truth for what to refresh
// when. Kept as data rather than call-site fragment lists.
var updateProfiles = map[Operation]UpdateProfile{
	OpTicketCreate: {
		Push: []Fragment{FragmentTicketTable},
	},
	OpTicketActivate: {
		Push:   []Fragment{FragmentActiveTicket, FragmentTicketTable},
		Signal: []Fragment{FragmentMembers},
	},
	OpTicketToggle: {
		Push:   []Fragment{FragmentActiveTicket, FragmentTicketTable},
		Signal: []Fragment{FragmentMembers},
	},
	OpSpaceToggle: {
		Signal: []Fragment{FragmentVotingRow, FragmentModeratorTools, FragmentTicketTable},
	},
	OpMemberToggle: {
		Signal: []Fragment{FragmentVotingRow, FragmentMembers},
	},
	OpMemberBoot: {
		Signal: []Fragment{FragmentModeratorTools, FragmentMembers},
	},
	OpVoteSubmit: {
		Signal: []Fragment{FragmentMembers},
	},
}

type fragmentSource interface {
	Render(fragment Fragment, slug string) (string, error)
}

// Dispatcher fans board updates out to a space's subscribers after a
// state-changing operation. The triggering request has already
// mutated persistent state; everything here is fire-and-forget from
// its point of view.
type Dispatcher struct {
	Renderer    fragmentSource
	Broadcaster *Broadcaster
}

func NewDispatcher(renderer fragmentSource, broadcaster *Broadcaster) *Dispatcher {
	return &Dispatcher{
		Renderer:    renderer,
		Broadcaster: broadcaster,
	}
}

// Dispatch looks up the operation's profile and delivers its push
// fragments first, then its refresh signals, in table order. A render
// failure skips that fragment only; delivery failures never reach the
// caller.
func (v *Dispatcher) Dispatch(slug string, op Operation) error {
	profile, ok := updateProfiles[op]
	if !ok {
		return fmt.Errorf("unknown operation: %s", op)
	}

	for _, fragment := range profile.Push {
		html, err := v.Renderer.Render(fragment, slug)
		if err != nil {
			log.Warn().Err(err).
				Str("space", slug).
				Str("fragment", string(fragment)).
				Msg("An error occurred when rendering fragment for push...")
			continue
		}
		v.Broadcaster.Broadcast(slug, NewHTMLUpdateMessage(fragment, html))
	}

	for _, fragment := range profile.Signal {
		v.Broadcaster.Broadcast(slug, NewRefreshMessage(fragment))
	}

	return nil
}

// DispatchBoardRefresh tells every viewer of a space to re-fetch all
// of its own fragments, with no target named. Used after the
// moderator clears the tally cache.
func (v *Dispatcher) DispatchBoardRefresh(slug string) {
	v.Broadcaster.Broadcast(slug, NewBoardRefreshMessage())
}
