// Package conversation owns the conversation list, the active transcript and
// the single in-flight chat request.
package conversation

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/wilbur182/docchat/internal/api"
	"github.com/wilbur182/docchat/internal/catalog"
	"github.com/wilbur182/docchat/internal/notify"
)

// Backend is the subset of the API client the store talks to.
type Backend interface {
	Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	ListConversations(ctx context.Context) ([]api.ConversationItem, error)
	GetConversation(ctx context.Context, id string) (*api.ConversationResponse, error)
	DeleteConversation(ctx context.Context, id string) error
}

// Scope is the context selection read at send time.
type Scope interface {
	FolderID() string
	SelectedIDs() []string
}

// ReplyMsg is the outcome of a send.
type ReplyMsg struct {
	Epoch uint64
	Resp  *api.ChatResponse
	Err   error
}

// ListMsg carries the conversation list.
type ListMsg struct {
	Items []api.ConversationItem
	Err   error
}

// LoadedMsg carries one conversation's messages.
type LoadedMsg struct {
	Seq      uint64
	ID       string
	Messages []api.MessageInfo
	Err      error
}

// DeletedMsg reports a delete.
type DeletedMsg struct {
	ID  string
	Err error
}

// Store is the conversation aggregate. Every method runs on the Update loop;
// network work happens only inside returned commands.
type Store struct {
	backend  Backend
	scope    Scope
	notifier notify.Notifier
	now      func() time.Time

	conversations []Summary
	active        Conversation
	draft         string

	sending bool
	loading bool
	// epoch changes whenever the active conversation is replaced, so a reply
	// for a conversation the user left is not appended to the new one.
	epoch   uint64
	loadSeq uint64

	provider  string
	webSearch bool
}

// NewStore creates a store with a fresh active conversation.
func NewStore(backend Backend, scope Scope, n notify.Notifier) *Store {
	return &Store{
		backend:  backend,
		scope:    scope,
		notifier: n,
		now:      time.Now,
		provider: "openai",
	}
}

func (s *Store) Active() Conversation     { return s.active }
func (s *Store) ActiveID() string         { return s.active.ID }
func (s *Store) Messages() []Message      { return s.active.Messages }
func (s *Store) Conversations() []Summary { return s.conversations }
func (s *Store) Sending() bool            { return s.sending }
func (s *Store) Loading() bool            { return s.loading }
func (s *Store) Draft() string            { return s.draft }
func (s *Store) SetDraft(text string)     { s.draft = text }
func (s *Store) Provider() string         { return s.provider }
func (s *Store) WebSearch() bool          { return s.webSearch }

// SetProvider selects the answering provider used for the next send.
func (s *Store) SetProvider(p string) {
	if p != "" {
		s.provider = p
	}
}

// SetWebSearch sets the web-search toggle.
func (s *Store) SetWebSearch(on bool) { s.webSearch = on }

// Send appends text as a user message and issues the chat request. Blank
// text, or a send while another is outstanding, is a no-op.
func (s *Store) Send(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" || s.sending {
		return nil
	}

	s.active.Messages = append(s.active.Messages, Message{
		Role:      RoleUser,
		Content:   text,
		CreatedAt: s.now(),
	})
	s.draft = ""
	s.sending = true

	req := api.ChatRequest{
		Message:          text,
		FolderID:         catalog.RootFolderID,
		LLMProvider:      s.provider,
		WebSearchEnabled: s.webSearch,
	}
	if s.scope != nil {
		req.FolderID = s.scope.FolderID()
		req.SelectedDocuments = s.scope.SelectedIDs()
	}
	if s.active.ID != "" {
		id := s.active.ID
		req.ConversationID = &id
	} else if s.active.SelectedDocuments == nil {
		s.active.SelectedDocuments = append([]string{}, req.SelectedDocuments...)
	}

	epoch := s.epoch
	backend := s.backend
	return func() tea.Msg {
		resp, err := backend.Chat(context.Background(), req)
		return ReplyMsg{Epoch: epoch, Resp: resp, Err: err}
	}
}

func (s *Store) handleReply(msg ReplyMsg) tea.Cmd {
	defer func() { s.sending = false }()

	if msg.Epoch != s.epoch {
		// The user moved to another conversation while this was in flight.
		if msg.Err == nil {
			return s.LoadConversations()
		}
		return nil
	}

	if msg.Err != nil || msg.Resp == nil {
		s.active.Messages = append(s.active.Messages, Message{
			Role:      RoleAssistant,
			Content:   FallbackReply,
			CreatedAt: s.now(),
		})
		reason := "Failed to send message"
		if msg.Err != nil {
			reason = api.Message(msg.Err)
		}
		return s.notifier.Notify(reason, notify.Error)
	}

	s.active.Messages = append(s.active.Messages, Message{
		Role:         RoleAssistant,
		Content:      msg.Resp.Response,
		Sources:      msg.Resp.Sources,
		ContextParts: msg.Resp.ContextParts,
		CreatedAt:    s.now(),
	})
	if msg.Resp.ConversationID != "" {
		s.active.ID = msg.Resp.ConversationID
	}
	return s.LoadConversations()
}

// LoadConversations refreshes the conversation list.
func (s *Store) LoadConversations() tea.Cmd {
	s.loading = true
	backend := s.backend
	return func() tea.Msg {
		items, err := backend.ListConversations(context.Background())
		return ListMsg{Items: items, Err: err}
	}
}

func (s *Store) handleList(msg ListMsg) tea.Cmd {
	defer func() { s.loading = false }()
	if msg.Err != nil {
		return s.notifier.Notify("Failed to load conversations: "+api.Message(msg.Err), notify.Error)
	}
	s.conversations = summariesFromAPI(msg.Items)
	return nil
}

// LoadConversation fetches id and, on success, replaces the active
// conversation with it. Only the most recent load is applied.
func (s *Store) LoadConversation(id string) tea.Cmd {
	if id == "" {
		return nil
	}
	s.loadSeq++
	seq := s.loadSeq
	backend := s.backend
	return func() tea.Msg {
		resp, err := backend.GetConversation(context.Background(), id)
		if err != nil {
			return LoadedMsg{Seq: seq, ID: id, Err: err}
		}
		return LoadedMsg{Seq: seq, ID: id, Messages: resp.Messages}
	}
}

func (s *Store) handleLoaded(msg LoadedMsg) tea.Cmd {
	if msg.Seq != s.loadSeq {
		return nil
	}
	if msg.Err != nil {
		return s.notifier.Notify("Failed to load conversation: "+api.Message(msg.Err), notify.Error)
	}
	var selected []string
	for _, c := range s.conversations {
		if c.ID == msg.ID {
			selected = c.SelectedDocuments
			break
		}
	}
	s.epoch++
	s.active = Conversation{
		ID:                msg.ID,
		Messages:          messagesFromAPI(msg.Messages),
		SelectedDocuments: selected,
	}
	return nil
}

// DeleteConversation asks for confirmation, then deletes id.
func (s *Store) DeleteConversation(id string) {
	if id == "" {
		return
	}
	backend := s.backend
	s.notifier.Confirm(
		"Confirm Deletion",
		"Are you sure you want to delete this conversation? This action cannot be undone.",
		notify.Warning,
		func() tea.Cmd {
			return func() tea.Msg {
				return DeletedMsg{ID: id, Err: backend.DeleteConversation(context.Background(), id)}
			}
		},
	)
}

func (s *Store) handleDeleted(msg DeletedMsg) tea.Cmd {
	if msg.Err != nil {
		return s.notifier.Notify(api.Message(msg.Err), notify.Error)
	}
	kept := s.conversations[:0]
	for _, c := range s.conversations {
		if c.ID != msg.ID {
			kept = append(kept, c)
		}
	}
	s.conversations = kept
	if s.active.ID == msg.ID {
		s.NewConversation()
	}
	return s.notifier.Notify("Conversation deleted successfully", notify.Success)
}

// NewConversation starts an empty conversation and clears the input buffer.
func (s *Store) NewConversation() {
	s.epoch++
	s.active = Conversation{}
	s.draft = ""
}

// ClearChat asks for confirmation, then starts an empty conversation.
func (s *Store) ClearChat() {
	s.notifier.Confirm(
		"Clear Chat History",
		"Are you sure you want to clear the current chat history? This action cannot be undone.",
		notify.Warning,
		func() tea.Cmd {
			s.NewConversation()
			return s.notifier.Notify("Chat history cleared", notify.Success)
		},
	)
}

// Update applies store messages and ignores everything else.
func (s *Store) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ReplyMsg:
		return s.handleReply(msg)
	case ListMsg:
		return s.handleList(msg)
	case LoadedMsg:
		return s.handleLoaded(msg)
	case DeletedMsg:
		return s.handleDeleted(msg)
	}
	return nil
}
