package jembe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Jembe/jembe-sub000/internal/logging"
	"github.com/Jembe/jembe-sub000/internal/metrics"
	"github.com/Jembe/jembe-sub000/internal/runtime"
	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/Jembe/jembe-sub000/pkg/dom"
	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/Jembe/jembe-sub000/pkg/ports"
	"github.com/Jembe/jembe-sub000/pkg/queue"
)

// DefaultRefreshAction is called on every component restored from history.
const DefaultRefreshAction = "display"

// ErrNoTransport is returned by Flush when the client was built without a transport.
var ErrNoTransport = errors.New("no transport configured")

// Client keeps one document in sync with the producer's components.
// Safe for concurrent use; reconciliation passes never interleave.
type Client struct {
	mu       sync.RWMutex
	doc      *dom.Document
	registry component.Registry
	engine   *runtime.Engine

	queue     *queue.Queue
	navigator *runtime.Navigator
	inFlight  atomic.Int64

	transport     ports.Transport
	uploader      ports.Uploader
	history       ports.HistoryStore
	binder        component.Binder
	hooks         domain.LifecycleHooks
	metrics       *metrics.Metrics
	logger        *slog.Logger
	sessionID     string
	refreshAction string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets a structured logger for the client and its engine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTransport sets how requests reach the producer.
func WithTransport(t ports.Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// WithUploader enables files inside Init params.
func WithUploader(u ports.Uploader) Option {
	return func(c *Client) {
		c.uploader = u
	}
}

// WithHistory records navigation of sessionID into store.
func WithHistory(store ports.HistoryStore, sessionID string) Option {
	return func(c *Client) {
		c.history = store
		c.sessionID = sessionID
	}
}

// WithBinder sets the directive layer activated on mount.
func WithBinder(b component.Binder) Option {
	return func(c *Client) {
		c.binder = b
	}
}

// WithLifecycleHooks registers request observers.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Client) {
		c.hooks = hooks
	}
}

// WithMetrics records passes and requests into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRefreshAction overrides DefaultRefreshAction.
func WithRefreshAction(action string) Option {
	return func(c *Client) {
		c.refreshAction = action
	}
}

// New creates a client on an empty document.
func New(opts ...Option) *Client {
	c := &Client{
		registry:      make(component.Registry),
		refreshAction: DefaultRefreshAction,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.sessionID != "" {
		c.logger = c.logger.With("session_id", c.sessionID)
	}
	if c.history != nil {
		c.navigator = runtime.NewNavigator(c.history, c.sessionID, c.logger)
	}
	c.queue = queue.New(c.stateOf)
	c.reset(dom.New())
	return c
}

func (c *Client) reset(doc *dom.Document) {
	c.doc = doc
	c.engine = runtime.NewEngine(runtime.NewMerger(doc, c.logger), runtime.WithLogger(c.logger))
}

func (c *Client) stateOf(execName string) (map[string]any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	comp, ok := c.registry[execName]
	if !ok {
		return nil, false
	}
	return comp.State, true
}

// Load replaces the document with markup and mounts the components found on it.
func (c *Client) Load(ctx context.Context, markup string) error {
	doc, err := dom.ParseString(markup)
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, comp := range c.registry {
		comp.Unmount(nil)
	}
	c.registry = make(component.Registry)
	c.reset(doc)

	scanned, err := runtime.Scan(doc, c.binder, c.logger)
	if err != nil {
		return err
	}
	if len(scanned) == 0 {
		c.logger.Warn("document carries no component")
		return nil
	}
	_, err = c.reconcile(ctx, scanned, nil, nil, true)
	return err
}

// Apply reconciles a raw response body into the document.
func (c *Client) Apply(ctx context.Context, body []byte) (*runtime.Report, error) {
	return c.apply(ctx, body, true)
}

func (c *Client) apply(ctx context.Context, body []byte, record bool) (*runtime.Report, error) {
	resp, err := runtime.DecodeResponse(body)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	incoming, err := runtime.Incoming(c.doc, c.registry, resp.Components, c.binder)
	if err != nil {
		return nil, err
	}
	return c.reconcile(ctx, c.registry, incoming, resp.Remove, record)
}

// reconcile runs one pass with c.mu held. When a merge fails, the registry
// the pass got to is installed, matching the document.
func (c *Client) reconcile(ctx context.Context, old, incoming component.Registry, remove []string, record bool) (*runtime.Report, error) {
	start := time.Now()
	next, report, err := c.engine.Reconcile(old, incoming, remove)
	c.metrics.Pass(time.Since(start), countOutcomes(report), err)
	if next != nil {
		c.registry = next
		if n := c.doc.Prune(); n > 0 {
			c.logger.Debug("released detached handles", "count", n)
		}
	}
	if err != nil {
		c.logger.Error("reconciliation failed", "error", err)
		return report, err
	}

	if record && c.navigator != nil {
		if _, _, err := c.navigator.Sync(ctx, next); err != nil {
			c.logger.Warn("history update failed", "error", err)
		}
	}
	return report, nil
}

func countOutcomes(r *runtime.Report) map[string]int {
	if r == nil {
		return nil
	}
	out := make(map[string]int, 3)
	for _, o := range r.Outcomes {
		out[string(o)]++
	}
	if len(r.Dropped) > 0 {
		out["dropped"] = len(r.Dropped)
	}
	if len(r.Removed) > 0 {
		out["removed"] = len(r.Removed)
	}
	return out
}

// Init queues an Init command; see queue.Queue.AddInit.
func (c *Client) Init(execName string, params map[string]any, mergeWithExisting bool) error {
	return c.queue.AddInit(execName, params, mergeWithExisting)
}

// Call queues an action call.
func (c *Client) Call(execName, action string, args []any, kwargs map[string]any) {
	c.queue.AddCall(execName, action, args, kwargs)
}

// Emit queues an event. An empty to means no explicit destination.
func (c *Client) Emit(execName, event string, params map[string]any, to string) {
	c.queue.AddEmit(execName, event, params, to)
}

// Payload returns the request the next Flush would send, without draining.
func (c *Client) Payload() *domain.Request {
	c.mu.RLock()
	snapshot := c.registry.Snapshot()
	c.mu.RUnlock()
	return &domain.Request{Components: snapshot, Commands: c.queue.Pending()}
}

// Flush sends the queued commands and applies the response. It returns a nil
// report when nothing was queued. Failed requests are not retried; their
// commands are dropped.
func (c *Client) Flush(ctx context.Context) (*runtime.Report, error) {
	return c.flush(ctx, true)
}

func (c *Client) flush(ctx context.Context, record bool) (report *runtime.Report, err error) {
	if c.transport == nil {
		return nil, ErrNoTransport
	}
	commands := c.queue.Drain()
	if len(commands) == 0 {
		return nil, nil
	}

	c.begin(ctx, len(commands))
	defer func() { c.end(ctx, len(commands), err) }()

	if err := c.upload(ctx, commands); err != nil {
		return nil, err
	}

	c.mu.RLock()
	req := &domain.Request{Components: c.registry.Snapshot(), Commands: commands}
	c.mu.RUnlock()

	body, err := c.transport.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.apply(ctx, body, record)
}

func (c *Client) begin(ctx context.Context, commands int) {
	n := c.inFlight.Add(1)
	c.metrics.RequestStarted()
	c.logger.Debug("request started", "commands", commands, "in_flight", n)
	if c.hooks.OnRequestStart != nil {
		c.hooks.OnRequestStart(ctx, &domain.RequestEvent{
			Timestamp: time.Now(),
			Type:      domain.EventRequestStart,
			InFlight:  int(n),
			Commands:  commands,
		})
	}
}

func (c *Client) end(ctx context.Context, commands int, err error) {
	n := c.inFlight.Add(-1)
	c.metrics.RequestFinished(err)
	ev := &domain.RequestEvent{
		Timestamp: time.Now(),
		Type:      domain.EventRequestEnd,
		InFlight:  int(n),
		Commands:  commands,
		Err:       err,
	}
	if err != nil {
		ev.Type = domain.EventRequestError
		c.logger.Warn("request failed", "error", err, "in_flight", n)
		if c.hooks.OnRequestError != nil {
			c.hooks.OnRequestError(ctx, ev)
		}
		return
	}
	if c.hooks.OnRequestEnd != nil {
		c.hooks.OnRequestEnd(ctx, ev)
	}
}

// InputsDisabled reports whether a request is in flight.
func (c *Client) InputsDisabled() bool {
	return c.inFlight.Load() > 0
}

// Restore re-initializes the components of a history entry and asks each one
// to refresh. The resulting pass is not recorded in history.
func (c *Client) Restore(ctx context.Context, entry domain.HistoryEntry) (*runtime.Report, error) {
	for _, snap := range entry.Components {
		if err := c.queue.AddInit(snap.ExecName, snap.State, false); err != nil {
			return nil, err
		}
		c.queue.AddCall(snap.ExecName, c.refreshAction, nil, nil)
	}
	return c.flush(ctx, false)
}

// Back steps the history back and restores the previous entry.
func (c *Client) Back(ctx context.Context) (*runtime.Report, error) {
	if c.navigator == nil {
		return nil, domain.ErrHistoryEmpty
	}
	entry, err := c.navigator.Back(ctx)
	if err != nil {
		return nil, err
	}
	return c.Restore(ctx, entry)
}

// Registry returns a copy of the current registry.
func (c *Client) Registry() component.Registry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry.Clone()
}

// Document renders the current document.
func (c *Client) Document() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc.String()
}

// Close unmounts every component, releasing bindings and timers.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, comp := range c.registry {
		comp.Unmount(nil)
	}
	c.registry = make(component.Registry)
}
