package services

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/poynterhq/poynter/pkg/internal/models"
)

// Fragment names a refreshable unit of the board UI. The names double
// as the DOM ids the client swaps content into.
type Fragment string

const (
	FragmentActiveTicket   Fragment = "display_active_ticket"
	FragmentTicketTable    Fragment = "display_ticket_table"
	FragmentTicketControl  Fragment = "display_ticket_control"
	FragmentVotingRow      Fragment = "display_voting_row"
	FragmentMembers        Fragment = "display_members"
	FragmentModeratorTools Fragment = "display_moderator_tools"
)

type VotingChoice struct {
	Number int
	Label  string
}

// VotingChoices is the fixed estimation sequence offered to voters.
var VotingChoices = []VotingChoice{
	{1, "One"},
	{2, "Two"},
	{3, "Three"},
	{5, "Five"},
	{8, "Eight"},
	{13, "Thirteen"},
}

//go:embed templates/*.tmpl
var templatesFS embed.FS

var fragmentTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.tmpl"))

type MemberVote struct {
	Username string
	Choice   *int
}

type boardContext struct {
	Space        models.Space
	ActiveTicket *models.Ticket
	Tickets      []models.Ticket
	Choices      []VotingChoice
	Members      []MemberVote
	AllVoted     bool
}

// BuildBoardMembers pairs every space member with their recorded choice
// for the active ticket. AllVoted is false for a zero-member space: an
// empty room must never read as ready to confirm.
func BuildBoardMembers(space models.Space, active *models.Ticket, sheet TallySheet) ([]MemberVote, bool) {
	members := make([]MemberVote, 0, len(space.Members))
	var voted int
	for _, member := range space.Members {
		entry := MemberVote{Username: member.Username}
		if active != nil {
			if choice, ok := sheet[active.ID][member.Username]; ok {
				entry.Choice = &choice
				voted++
			}
		}
		members = append(members, entry)
	}

	allVoted := len(members) > 0 && voted == len(members)
	return members, allVoted
}

// FragmentRenderer produces the current-state markup of a named board
// fragment from persistent plus tally state. Rendering never mutates
// anything.
type FragmentRenderer struct {
	Tallies *TallyStore
}

func NewFragmentRenderer(tallies *TallyStore) *FragmentRenderer {
	return &FragmentRenderer{Tallies: tallies}
}

func (v *FragmentRenderer) Render(fragment Fragment, slug string) (string, error) {
	space, err := GetSpaceBySlug(slug)
	if err != nil {
		return "", err
	}

	switch fragment {
	case FragmentActiveTicket:
		active, err := GetActiveTicket(space)
		if err != nil {
			return "", err
		}
		return renderTemplate(fragment, boardContext{Space: space, ActiveTicket: active})
	case FragmentTicketTable, FragmentTicketControl:
		tickets, err := ListSpaceTickets(space)
		if err != nil {
			return "", err
		}
		return renderTemplate(fragment, boardContext{Space: space, Tickets: tickets})
	case FragmentVotingRow:
		active, err := GetActiveTicket(space)
		if err != nil {
			return "", err
		}
		return renderTemplate(fragment, boardContext{
			Space:        space,
			ActiveTicket: active,
			Choices:      VotingChoices,
		})
	case FragmentMembers:
		active, err := GetActiveTicket(space)
		if err != nil {
			return "", err
		}
		members, allVoted := BuildBoardMembers(space, active, v.Tallies.ReadVotes(slug))
		return renderTemplate(fragment, boardContext{
			Space:        space,
			ActiveTicket: active,
			Members:      members,
			AllVoted:     allVoted,
		})
	case FragmentModeratorTools:
		active, err := GetActiveTicket(space)
		if err != nil {
			return "", err
		}
		return renderTemplate(fragment, boardContext{Space: space, ActiveTicket: active})
	default:
		return "", fmt.Errorf("unknown fragment: %s", fragment)
	}
}

func renderTemplate(fragment Fragment, data boardContext) (string, error) {
	var out strings.Builder
	if err := fragmentTemplates.ExecuteTemplate(&out, string(fragment)+".tmpl", data); err != nil {
		return "", err
	}
	return out.String(), nil
}
