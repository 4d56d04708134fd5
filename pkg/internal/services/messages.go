package services

// Wire message kinds consumed by connected board clients. Two delivery
// modes exist: html_update carries fully rendered fragment content,
// while unicast_refresh only tells clients to re-fetch a fragment via
// their own read path so per-viewer content stays correct.
const (
	MessageTypeHTMLUpdate     = "html_update"
	MessageTypeUnicastRefresh = "unicast_refresh"
)

type HTMLUpdateMessage struct {
	Type          string   `json:"type"`
	HTMLContent   string   `json:"html_content"`
	TargetElement Fragment `json:"target_element"`
}

func NewHTMLUpdateMessage(fragment Fragment, html string) HTMLUpdateMessage {
	return HTMLUpdateMessage{
		Type:          MessageTypeHTMLUpdate,
		HTMLContent:   html,
		TargetElement: fragment,
	}
}

type RefreshMessage struct {
	Type     string   `json:"type"`
	TargetID Fragment `json:"target_id,omitempty"`
}

func NewRefreshMessage(fragment Fragment) RefreshMessage {
	return RefreshMessage{Type: MessageTypeUnicastRefresh, TargetID: fragment}
}

// NewBoardRefreshMessage is the group-wide variant with no target:
// each client decides which of its own fragments to refresh.
func NewBoardRefreshMessage() RefreshMessage {
	return RefreshMessage{Type: MessageTypeUnicastRefresh}
}

// ChatMessage is free-text chat relayed to a space's group, outside
// the fragment-refresh system.
type ChatMessage struct {
	Message string `json:"message"`
}
