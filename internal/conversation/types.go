package conversation

import (
	"time"

	"github.com/wilbur182/docchat/internal/api"
	"github.com/wilbur182/docchat/internal/catalog"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// wireRoleAssistant is how the backend stores replies.
const wireRoleAssistant = "bot"

// FallbackReply is appended when a send fails so every user turn has a reply.
const FallbackReply = "Sorry, I encountered an error processing your message. Please try again."

// Message is one transcript entry. Messages are never edited once appended.
type Message struct {
	Role         Role
	Content      string
	Sources      []api.Source
	ContextParts []string
	CreatedAt    time.Time
}

// Conversation is the active transcript. An empty ID means the server has
// not assigned one yet.
type Conversation struct {
	ID                string
	Messages          []Message
	SelectedDocuments []string
}

// Summary is a conversation list entry.
type Summary struct {
	ID                string
	Title             string
	Preview           string
	SelectedDocuments []string
}

func roleFromWire(r string) Role {
	if r == "user" {
		return RoleUser
	}
	return RoleAssistant
}

func messagesFromAPI(in []api.MessageInfo) []Message {
	out := make([]Message, 0, len(in))
	for _, m := range in {
		out = append(out, Message{
			Role:         roleFromWire(m.Role),
			Content:      m.Content,
			Sources:      m.Sources,
			ContextParts: m.ContextParts,
			CreatedAt:    catalog.ParseTime(m.Timestamp),
		})
	}
	return out
}

func summariesFromAPI(items []api.ConversationItem) []Summary {
	out := make([]Summary, 0, len(items))
	for _, it := range items {
		title := it.Title
		if title == "" {
			title = "New Conversation"
		}
		out = append(out, Summary{
			ID:                it.ConversationID,
			Title:             title,
			Preview:           Preview(messagesFromAPI(it.Messages)),
			SelectedDocuments: append([]string(nil), it.SelectedDocuments...),
		})
	}
	return out
}
