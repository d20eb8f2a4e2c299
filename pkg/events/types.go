package events

const (
	DocumentUploaded = "DOCUMENT_UPLOADED"
	DocumentIndexed  = "DOCUMENT_INDEXED"
	DocumentDeleted  = "DOCUMENT_DELETED"
	ChatQueried      = "CHAT_QUERIED"
	HistoryCleared   = "HISTORY_CLEARED"
)

// Topic is the watermill topic every domain event is published on.
const Topic = "chatdoc.events"

// Subject returns the NATS subject for an event type.
func Subject(eventType string) string {
	return "events." + eventType
}
