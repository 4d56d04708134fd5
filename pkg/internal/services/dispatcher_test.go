package services

import (
	"fmt"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
)

type stubRenderer struct {
	rendered []Fragment
	fail     map[Fragment]bool
}

func (r *stubRenderer) Render(fragment Fragment, slug string) (string, error) {
	if r.fail[fragment] {
		return "", fmt.Errorf("render %s failed", fragment)
	}
	r.rendered = append(r.rendered, fragment)
	return fmt.Sprintf("<div id=%q>%s</div>", fragment, slug), nil
}

type wirePayload struct {
	Type          string `json:"type"`
	HTMLContent   string `json:"html_content"`
	TargetElement string `json:"target_element"`
	TargetID      string `json:"target_id"`
}

func receiveWire(t *testing.T, sub *Subscriber, want int) []wirePayload {
	t.Helper()

	messages := make([]wirePayload, 0, want)
	for len(messages) < want {
		select {
		case payload := <-sub.Outbound():
			var msg wirePayload
			if err := jsoniter.Unmarshal(payload, &msg); err != nil {
				t.Fatalf("unmarshal payload: %v", err)
			}
			messages = append(messages, msg)
		case <-time.After(time.Second):
			t.Fatalf("received %d messages, want %d", len(messages), want)
		}
	}
	return messages
}

func TestDispatchTicketActivateProfile(t *testing.T) {
	hub := NewBroadcaster()
	sub := NewSubscriber()
	hub.Join("alpha", sub)
	renderer := &stubRenderer{}
	dispatcher := NewDispatcher(renderer, hub)

	if err := dispatcher.Dispatch("alpha", OpTicketActivate); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	messages := receiveWire(t, sub, 3)

	if messages[0].Type != MessageTypeHTMLUpdate || messages[0].TargetElement != string(FragmentActiveTicket) {
		t.Fatalf("first message = %+v, want html_update for %s", messages[0], FragmentActiveTicket)
	}
	if messages[1].Type != MessageTypeHTMLUpdate || messages[1].TargetElement != string(FragmentTicketTable) {
		t.Fatalf("second message = %+v, want html_update for %s", messages[1], FragmentTicketTable)
	}
	if messages[2].Type != MessageTypeUnicastRefresh || messages[2].TargetID != string(FragmentMembers) {
		t.Fatalf("third message = %+v, want unicast_refresh for %s", messages[2], FragmentMembers)
	}

	if len(messages[0].HTMLContent) == 0 || len(messages[1].HTMLContent) == 0 {
		t.Fatal("push messages must carry rendered content")
	}
	if len(messages[2].HTMLContent) != 0 {
		t.Fatal("refresh signals must not carry content")
	}
}

func TestDispatchTicketCreateRefreshesTableOnly(t *testing.T) {
	hub := NewBroadcaster()
	sub := NewSubscriber()
	hub.Join("alpha", sub)
	renderer := &stubRenderer{}
	dispatcher := NewDispatcher(renderer, hub)

	if err := dispatcher.Dispatch("alpha", OpTicketCreate); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	messages := receiveWire(t, sub, 1)
	if messages[0].Type != MessageTypeHTMLUpdate || messages[0].TargetElement != string(FragmentTicketTable) {
		t.Fatalf("message = %+v, want html_update for %s", messages[0], FragmentTicketTable)
	}
	if len(renderer.rendered) != 1 {
		t.Fatalf("rendered %v, a new ticket must refresh the ticket table only", renderer.rendered)
	}
}

func TestDispatchSpaceToggleSignalsOnly(t *testing.T) {
	hub := NewBroadcaster()
	sub := NewSubscriber()
	hub.Join("alpha", sub)
	renderer := &stubRenderer{}
	dispatcher := NewDispatcher(renderer, hub)

	if err := dispatcher.Dispatch("alpha", OpSpaceToggle); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	messages := receiveWire(t, sub, 3)
	want := []Fragment{FragmentVotingRow, FragmentModeratorTools, FragmentTicketTable}
	for i, fragment := range want {
		if messages[i].Type != MessageTypeUnicastRefresh || messages[i].TargetID != string(fragment) {
			t.Fatalf("message %d = %+v, want unicast_refresh for %s", i, messages[i], fragment)
		}
	}

	if len(renderer.rendered) != 0 {
		t.Fatalf("rendered %v, signal-only operations must render nothing", renderer.rendered)
	}
}

func TestDispatchVoteSubmitSignalsMembersOnly(t *testing.T) {
	hub := NewBroadcaster()
	sub := NewSubscriber()
	hub.Join("alpha", sub)
	dispatcher := NewDispatcher(&stubRenderer{}, hub)

	if err := dispatcher.Dispatch("alpha", OpVoteSubmit); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	messages := receiveWire(t, sub, 1)
	if messages[0].Type != MessageTypeUnicastRefresh || messages[0].TargetID != string(FragmentMembers) {
		t.Fatalf("message = %+v, want unicast_refresh for %s", messages[0], FragmentMembers)
	}
}

func TestDispatchUnknownOperationFails(t *testing.T) {
	dispatcher := NewDispatcher(&stubRenderer{}, NewBroadcaster())

	if err := dispatcher.Dispatch("alpha", Operation("space.explode")); err == nil {
		t.Fatal("unknown operation must fail loudly")
	}
}

func TestDispatchSkipsFailedPushFragmentOnly(t *testing.T) {
	hub := NewBroadcaster()
	sub := NewSubscriber()
	hub.Join("alpha", sub)
	renderer := &stubRenderer{fail: map[Fragment]bool{FragmentActiveTicket: true}}
	dispatcher := NewDispatcher(renderer, hub)

	if err := dispatcher.Dispatch("alpha", OpTicketActivate); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	messages := receiveWire(t, sub, 2)
	if messages[0].TargetElement != string(FragmentTicketTable) {
		t.Fatalf("first message = %+v, want the surviving push fragment", messages[0])
	}
	if messages[1].TargetID != string(FragmentMembers) {
		t.Fatalf("second message = %+v, want the members refresh", messages[1])
	}
}

func TestDispatchBoardRefreshHasNoTarget(t *testing.T) {
	hub := NewBroadcaster()
	sub := NewSubscriber()
	hub.Join("alpha", sub)
	dispatcher := NewDispatcher(&stubRenderer{}, hub)

	dispatcher.DispatchBoardRefresh("alpha")

	messages := receiveWire(t, sub, 1)
	if messages[0].Type != MessageTypeUnicastRefresh {
		t.Fatalf("message = %+v, want unicast_refresh", messages[0])
	}
	if len(messages[0].TargetID) != 0 {
		t.Fatalf("message = %+v, the group-wide variant must carry no target", messages[0])
	}
}
