// Package chat drives one conversation: it owns the visible message list,
// submits user input to the gateway and persists every change.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kisaansahayak/sahayak/internal/domain"
)

var (
	// ErrEmptyInput is returned when the submitted text is blank.
	ErrEmptyInput = errors.New("message is empty")
	// ErrBusy is returned when a send is already in flight.
	ErrBusy = errors.New("a message is already being sent")
)

const sendFailed = "Failed to send message"

// State is the controller's send state.
type State int

const (
	StateIdle State = iota
	StateSending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	default:
		return "unknown"
	}
}

// Sender delivers one message to the gateway.
type Sender interface {
	Send(ctx context.Context, text, sessionID, userID string) (*domain.ChatResponse, error)
}

// HistoryStore persists the conversation.
type HistoryStore interface {
	Load(ctx context.Context) []domain.Message
	Save(ctx context.Context, messages []domain.Message) bool
}

// Identity supplies the current user.
type Identity interface {
	GetCurrentUser(ctx context.Context) domain.User
}

// Listener is notified with a snapshot of the messages after every change.
type Listener func([]domain.Message)

// Controller is the chat session controller.
type Controller struct {
	sender  Sender
	history HistoryStore
	users   Identity
	logger  *zap.Logger
	now     func() time.Time

	mu        sync.Mutex
	sessionID string
	messages  []domain.Message
	state     State
	err       string
	input     string
	listeners map[int]Listener
	nextID    int
}

// Option configures a Controller.
type Option func(*Controller)

// WithSessionID resumes an existing session id instead of generating one.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.sessionID = id
		}
	}
}

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController creates a controller and loads the stored history.
func NewController(ctx context.Context, sender Sender, history HistoryStore, users Identity, opts ...Option) *Controller {
	c := &Controller{
		sender:    sender,
		history:   history,
		users:     users,
		logger:    zap.NewNop(),
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sessionID == "" {
		c.sessionID = uuid.New().String()
	}
	c.messages = history.Load(ctx)
	return c
}

// Submit sends the trimmed text as the user's next message and waits for the reply.
// The user message is shown and persisted before the network call. A failed
// send keeps the user message and records a readable error; the returned
// error is the send failure.
func (c *Controller) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}

	user := c.users.GetCurrentUser(ctx)

	c.mu.Lock()
	if c.state == StateSending {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = StateSending
	c.input = ""
	c.err = ""
	c.messages = append(c.messages, domain.Message{
		ID:        domain.NewMessageID(),
		Text:      text,
		IsUser:    true,
		Timestamp: domain.Timestamp(c.now()),
		UserID:    user.ID,
	})
	snapshot := c.snapshotLocked()
	sessionID := c.sessionID
	c.mu.Unlock()

	c.persist(ctx, snapshot)
	c.notify(snapshot)

	resp, err := c.sender.Send(ctx, text, sessionID, user.ID)

	c.mu.Lock()
	c.state = StateIdle
	if err != nil {
		c.err = describe(err)
		c.mu.Unlock()
		c.logger.Warn("chat send failed", zap.String("session_id", sessionID), zap.Error(err))
		c.notify(snapshot)
		return err
	}

	c.messages = append(c.messages, domain.Message{
		ID:        domain.NewMessageID(),
		Text:      resp.Message,
		IsUser:    false,
		Timestamp: domain.Timestamp(c.now()),
		Type:      resp.Type,
		UserID:    user.ID,
	})
	snapshot = c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, snapshot)
	c.notify(snapshot)
	return nil
}

func describe(err error) string {
	var gw *domain.GatewayError
	if errors.As(err, &gw) && gw.Message != "" {
		return gw.Message
	}
	return sendFailed
}

func (c *Controller) persist(ctx context.Context, messages []domain.Message) {
	if !c.history.Save(ctx, messages) {
		c.logger.Warn("chat history not saved", zap.Int("messages", len(messages)))
	}
}

// Subscribe registers l for change notifications. The returned func removes it.
func (c *Controller) Subscribe(l Listener) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

func (c *Controller) notify(snapshot []domain.Message) {
	c.mu.Lock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		out := make([]domain.Message, len(snapshot))
		copy(out, snapshot)
		l(out)
	}
}

func (c *Controller) snapshotLocked() []domain.Message {
	out := make([]domain.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Messages returns a copy of the visible messages.
func (c *Controller) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// State returns the send state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the readable error of the last failed send, or "".
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SessionID returns the session id sent with every message.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Input returns the pending input text.
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

// SetInput replaces the pending input text.
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
}

// SubmitInput submits the pending input text.
func (c *Controller) SubmitInput(ctx context.Context) error {
	return c.Submit(ctx, c.Input())
}

// Reset clears the visible conversation and the stored history, and starts a new session id.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateSending {
		c.mu.Unlock()
		return ErrBusy
	}
	c.messages = []domain.Message{}
	c.err = ""
	c.sessionID = uuid.New().String()
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, snapshot)
	c.notify(snapshot)
	return nil
}
