// Package session holds the display state of one interactive session and the
// submit transition that updates it.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ThatCatDev/modelinspect/internal/daemon"
	"github.com/ThatCatDev/modelinspect/internal/format"
	"github.com/ThatCatDev/modelinspect/internal/record"
)

// Placeholder texts shown before the first submission.
const (
	NoModelSubmitted = "No model submitted yet."
	NoSystemPrompt   = "No system prompt configured"
	ConfigPending    = "Model config will be shown here after submission."
)

const (
	unreachableNotice = "Ollama is not running or is not accessible"
	unreachableField  = "Error: Could not connect to Ollama."
)

// Phase is the controller's position in its two-state machine.
type Phase int

const (
	Idle Phase = iota
	Submitted
)

func (p Phase) String() string {
	if p == Submitted {
		return "submitted"
	}
	return "idle"
}

// State is the three display fields of a session.
type State struct {
	SubmittedModel string
	SystemPrompt   string
	Config         string
}

// DefaultState returns the state of a session with no completed submission.
func DefaultState() State {
	return State{
		SubmittedModel: NoModelSubmitted,
		SystemPrompt:   NoSystemPrompt,
		Config:         ConfigPending,
	}
}

// Level is the severity of a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is a transient user-visible message.
type Notification struct {
	Level   Level
	Message string
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Daemon is what the controller needs from the daemon client.
type Daemon interface {
	ListModels(ctx context.Context) []string
	FetchConfig(ctx context.Context, id string) (*record.Record, string, bool)
}

// Controller owns one session's display state. Submissions are serialized.
type Controller struct {
	daemon   Daemon
	notifier Notifier
	log      zerolog.Logger

	submitMu sync.Mutex // held for a whole submission

	mu        sync.RWMutex
	state     State
	phase     Phase
	models    []string
	observers []func(State)
}

// New creates a Controller in the Idle phase.
func New(d Daemon, n Notifier, log zerolog.Logger) *Controller {
	if n == nil {
		n = NotifierFunc(func(Notification) {})
	}
	return &Controller{
		daemon:   d,
		notifier: n,
		log:      log.With().Str("component", "session").Logger(),
		state:    DefaultState(),
	}
}

// Start fetches the model list offered by this session and returns it.
func (c *Controller) Start(ctx context.Context) []string {
	models := c.daemon.ListModels(ctx)
	c.mu.Lock()
	c.models = models
	c.mu.Unlock()
	return models
}

// Models returns the model list fetched by Start.
func (c *Controller) Models() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.models...)
}

// State returns the current display state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Phase returns Idle until the first submission completes.
func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// Subscribe registers fn to be called with the new state after every
// completed submission.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Submit runs one submission for the selected model and returns the state it
// committed. A concurrent call waits for the one in flight to finish.
func (c *Controller) Submit(ctx context.Context, selected string) State {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	next, notice := c.attempt(ctx, selected)
	c.commit(next)
	if notice != nil {
		c.notifier.Notify(*notice)
	}
	return next
}

func (c *Controller) attempt(ctx context.Context, selected string) (State, *Notification) {
	if daemon.IsSentinel(selected) {
		c.log.Warn().Msg("submit with daemon unreachable")
		next := State{
			SubmittedModel: unreachableField,
			SystemPrompt:   unreachableField,
			Config:         unreachableField,
		}
		return next, &Notification{Level: LevelError, Message: unreachableNotice}
	}

	next := State{SubmittedModel: fmt.Sprintf("You submitted model: %s", selected)}

	rec, systemPrompt, ok := c.daemon.FetchConfig(ctx, selected)
	if rec == nil {
		msg := fmt.Sprintf("Error getting config for %s", selected)
		next.Config = msg
		next.SystemPrompt = msg
		return next, &Notification{Level: LevelError, Message: msg}
	}

	text, err := format.Config(rec)
	if err != nil {
		msg := fmt.Sprintf("Error formatting config for %s", selected)
		ev := c.log.Error().Err(err).Str("model", selected)
		var typeErr *format.UnsupportedTypeError
		if errors.As(err, &typeErr) {
			ev = ev.Str("type", typeErr.Type)
		}
		ev.Msg(msg)
		next.Config = msg
		next.SystemPrompt = msg
		return next, &Notification{Level: LevelError, Message: fmt.Sprintf("%s: %v", msg, err)}
	}
	next.Config = text

	if ok {
		next.SystemPrompt = systemPrompt
	} else {
		next.SystemPrompt = NoSystemPrompt
	}
	c.log.Debug().Str("model", selected).Bool("system_prompt", ok).Msg("config loaded")
	return next, nil
}

func (c *Controller) commit(next State) {
	c.mu.Lock()
	c.state = next
	c.phase = Submitted
	observers := slices.Clone(c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
}
