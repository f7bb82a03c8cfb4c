package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatCatDev/modelinspect/internal/daemon"
	"github.com/ThatCatDev/modelinspect/internal/record"
)

type fakeDaemon struct {
	models  []string
	records map[string]*record.Record

	mu       sync.Mutex
	inFlight int
	maxSeen  int
	delay    time.Duration
}

func (f *fakeDaemon) ListModels(context.Context) []string {
	return f.models
}

func (f *fakeDaemon) FetchConfig(_ context.Context, id string) (*record.Record, string, bool) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxSeen {
		f.maxSeen = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()
	time.Sleep(f.delay)

	rec, ok := f.records[id]
	if !ok {
		return nil, "", false
	}
	prompt, ok := rec.String(daemon.SystemKey)
	return rec, prompt, ok && prompt != ""
}

type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	r.notes = append(r.notes, n)
	r.mu.Unlock()
}

func (r *recorder) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notes...)
}

func newTestController(d Daemon) (*Controller, *recorder) {
	rec := &recorder{}
	return New(d, rec, zerolog.Nop()), rec
}

func TestInitialState(t *testing.T) {
	c, _ := newTestController(&fakeDaemon{})

	assert.Equal(t, Idle, c.Phase())
	assert.Equal(t, State{
		SubmittedModel: "No model submitted yet.",
		SystemPrompt:   "No system prompt configured",
		Config:         "Model config will be shown here after submission.",
	}, c.State())
}

func TestStartFetchesModels(t *testing.T) {
	c, _ := newTestController(&fakeDaemon{models: []string{"a", "b"}})

	assert.Equal(t, []string{"a", "b"}, c.Start(context.Background()))
	assert.Equal(t, []string{"a", "b"}, c.Models())
}

func TestSubmitWithSystemPrompt(t *testing.T) {
	d := &fakeDaemon{records: map[string]*record.Record{
		"llama3": record.New().Set("system", "You are helpful.").Set("modelfile", "FROM llama3"),
	}}
	c, notes := newTestController(d)

	st := c.Submit(context.Background(), "llama3")

	assert.Equal(t, "You submitted model: llama3", st.SubmittedModel)
	assert.Equal(t, "You are helpful.", st.SystemPrompt)
	assert.Contains(t, st.Config, `"system": "You are helpful."`)
	assert.Equal(t, st, c.State())
	assert.Equal(t, Submitted, c.Phase())
	assert.Empty(t, notes.all())
}

func TestSubmitWithoutSystemPrompt(t *testing.T) {
	d := &fakeDaemon{records: map[string]*record.Record{
		"phi3": record.New().Set("modelfile", "FROM phi3"),
	}}
	c, _ := newTestController(d)

	st := c.Submit(context.Background(), "phi3")
	assert.Equal(t, "No system prompt configured", st.SystemPrompt)
	assert.Contains(t, st.Config, `"modelfile": "FROM phi3"`)
}

func TestSubmitSentinel(t *testing.T) {
	d := &fakeDaemon{models: []string{daemon.Unreachable}}
	c, notes := newTestController(d)
	models := c.Start(context.Background())
	require.Equal(t, []string{daemon.Unreachable}, models)

	st := c.Submit(context.Background(), models[0])

	want := "Error: Could not connect to Ollama."
	assert.Equal(t, State{SubmittedModel: want, SystemPrompt: want, Config: want}, st)
	require.Len(t, notes.all(), 1)
	assert.Equal(t, Notification{Level: LevelError, Message: "Ollama is not running or is not accessible"}, notes.all()[0])
}

func TestSubmitFetchFailure(t *testing.T) {
	c, notes := newTestController(&fakeDaemon{})

	st := c.Submit(context.Background(), "ghost")

	assert.Equal(t, "You submitted model: ghost", st.SubmittedModel)
	assert.Equal(t, "Error getting config for ghost", st.Config)
	assert.Equal(t, "Error getting config for ghost", st.SystemPrompt)
	require.Len(t, notes.all(), 1)
	assert.Equal(t, LevelError, notes.all()[0].Level)
	assert.Equal(t, "Error getting config for ghost", notes.all()[0].Message)
}

func TestSubmitFormattingFailure(t *testing.T) {
	d := &fakeDaemon{records: map[string]*record.Record{
		"odd": record.New().Set("system", "hi").Set("bad", struct{}{}),
	}}
	c, notes := newTestController(d)

	st := c.Submit(context.Background(), "odd")

	assert.Equal(t, "You submitted model: odd", st.SubmittedModel)
	assert.Equal(t, "Error formatting config for odd", st.Config)
	assert.Equal(t, "Error formatting config for odd", st.SystemPrompt)
	require.Len(t, notes.all(), 1)
	assert.Contains(t, notes.all()[0].Message, "struct {}")
}

func TestSecondSubmissionReplacesFirst(t *testing.T) {
	d := &fakeDaemon{records: map[string]*record.Record{
		"first":  record.New().Set("system", "First prompt.").Set("only_first", true),
		"second": record.New().Set("modelfile", "FROM second"),
	}}
	c, _ := newTestController(d)

	c.Submit(context.Background(), "first")
	st := c.Submit(context.Background(), "second")

	assert.Equal(t, "You submitted model: second", st.SubmittedModel)
	assert.Equal(t, "No system prompt configured", st.SystemPrompt)
	assert.NotContains(t, st.Config, "only_first")
	assert.Equal(t, st, c.State())
}

func TestObserversSeeWholeState(t *testing.T) {
	d := &fakeDaemon{records: map[string]*record.Record{
		"m": record.New().Set("system", "S"),
	}}
	c, _ := newTestController(d)

	var seen []State
	c.Subscribe(func(s State) { seen = append(seen, s) })

	c.Submit(context.Background(), "m")
	c.Submit(context.Background(), "missing")

	require.Len(t, seen, 2)
	assert.Equal(t, "S", seen[0].SystemPrompt)
	assert.Equal(t, "You submitted model: missing", seen[1].SubmittedModel)
	assert.Equal(t, "Error getting config for missing", seen[1].Config)
}

func TestSubmissionsAreSerialized(t *testing.T) {
	d := &fakeDaemon{
		delay: 10 * time.Millisecond,
		records: map[string]*record.Record{
			"m": record.New().Set("system", "S"),
		},
	}
	c, _ := newTestController(d)

	var completed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Submit(context.Background(), "m")
			completed.Add(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), completed.Load())
	assert.Equal(t, 1, d.maxSeen)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "submitted", Submitted.String())
}
