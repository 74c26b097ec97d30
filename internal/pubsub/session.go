package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-buttonnode/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-buttonnode/internal/node"
)

// nodeNamePattern matches the identifiers accepted for node names.
var nodeNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options configures a Session.
type Options struct {
	// QoS is used for every publish and subscribe.
	QoS byte

	// InboxSize bounds inbound messages held between spins.
	InboxSize int

	// AnnounceTopic, when set, receives a retained identity message from
	// CreateNode.
	AnnounceTopic string

	Logger node.Logger
}

// Session is the node's view of the pub/sub layer. It implements
// node.Middleware.
type Session struct {
	dial   Dialer
	opts   Options
	logger node.Logger
	inbox  *Inbox

	mu        sync.Mutex
	transport Transport
	topics    mqtt.Topics
	nodeName  string
	subs      []string
	closed    bool

	linkDrops      atomic.Uint64
	publishPending atomic.Int64
	publishLate    atomic.Uint64
}

// linkWatcher is implemented by transports that report link changes.
type linkWatcher interface {
	SetOnConnect(callback func())
	SetOnDisconnect(callback func(err error))
}

// NewSession creates a session that will dial its transport on Init.
func NewSession(dial Dialer, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &Session{
		dial:   dial,
		opts:   opts,
		logger: logger,
		inbox:  NewInbox(opts.InboxSize),
	}
}

// Init dials the transport. It is the "context" setup step.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.transport != nil {
		return nil
	}
	if s.dial == nil {
		return fmt.Errorf("%w: no dialer", ErrNotInitialised)
	}

	t, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("dialing transport: %w", err)
	}
	if !t.IsConnected() {
		return mqtt.ErrNotConnected
	}
	s.transport = t

	// Spins fail while the link is down; these only make the outage visible.
	if w, ok := t.(linkWatcher); ok {
		w.SetOnDisconnect(func(err error) {
			s.linkDrops.Add(1)
			s.logger.Warn("broker link down", "error", err)
		})
		w.SetOnConnect(func() {
			s.logger.Info("broker link up", "drops", s.linkDrops.Load())
		})
	}
	return nil
}

// CreateNode validates and records the node identity.
func (s *Session) CreateNode(_ context.Context, name, namespace string) error {
	if !nodeNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidNodeName, name)
	}

	s.mu.Lock()
	if err := s.readyLocked(false); err != nil {
		s.mu.Unlock()
		return err
	}
	s.nodeName = name
	s.topics = mqtt.Topics{Namespace: namespace}
	t := s.transport
	s.mu.Unlock()

	s.announce(t, name, namespace)
	return nil
}

// announcement is the retained identity message sent by CreateNode.
type announcement struct {
	Node      string `json:"node"`
	Namespace string `json:"namespace,omitempty"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// announce publishes the node identity. Failure is logged, not returned.
func (s *Session) announce(t Transport, name, namespace string) {
	if s.opts.AnnounceTopic == "" {
		return
	}
	payload, err := json.Marshal(announcement{
		Node:      name,
		Namespace: namespace,
		Status:    mqtt.StatusOnline,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	if err := t.Publish(s.opts.AnnounceTopic, payload, s.opts.QoS, true); err != nil {
		s.logger.Warn("node announcement failed", "topic", s.opts.AnnounceTopic, "error", err)
	}
}

// CreatePublisher returns a publisher for topic, resolved against the
// node's namespace.
func (s *Session) CreatePublisher(_ context.Context, topic string) (node.Publisher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readyLocked(true); err != nil {
		return nil, err
	}
	resolved := s.topics.Resolve(topic)
	if err := mqtt.ValidatePublishTopic(resolved); err != nil {
		return nil, err
	}
	return &Publisher{session: s, transport: s.transport, topic: resolved, qos: s.opts.QoS}, nil
}

// CreateSubscription subscribes to topic. Messages go to the session inbox
// until an executor delivers them.
func (s *Session) CreateSubscription(_ context.Context, topic string) (node.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readyLocked(true); err != nil {
		return nil, err
	}
	resolved := s.topics.Resolve(topic)
	if resolved == "" {
		return nil, mqtt.ErrInvalidTopic
	}

	inbox := s.inbox
	err := s.transport.Subscribe(resolved, s.opts.QoS, func(t string, payload []byte) error {
		inbox.Push(t, payload)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.subs = append(s.subs, resolved)
	return &Subscription{session: s, topic: resolved}, nil
}

// CreateExecutor returns an executor with room for handles handlers.
func (s *Session) CreateExecutor(_ context.Context, handles int) (node.Executor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.readyLocked(true); err != nil {
		return nil, err
	}
	if handles < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidHandles, handles)
	}
	return newExecutor(s, handles), nil
}

// readyLocked checks the setup order. s.mu must be held.
func (s *Session) readyLocked(needNode bool) error {
	switch {
	case s.closed:
		return ErrClosed
	case s.transport == nil:
		return ErrNotInitialised
	case needNode && s.nodeName == "":
		return ErrNoNode
	}
	return nil
}

// InboxStats returns the inbox counters.
func (s *Session) InboxStats() InboxStats {
	return s.inbox.Stats()
}

// LinkDrops returns how often the transport reported a lost link.
func (s *Session) LinkDrops() uint64 {
	return s.linkDrops.Load()
}

// PublishStats describes publishes handed to an AsyncPublisher.
type PublishStats struct {
	// Pending is publishes still waiting for their outcome.
	Pending int64 `json:"pending"`

	// Failed is publishes the transport accepted but could not deliver.
	Failed uint64 `json:"failed"`
}

// PublishStats returns the asynchronous publish counters.
func (s *Session) PublishStats() PublishStats {
	return PublishStats{
		Pending: s.publishPending.Load(),
		Failed:  s.publishLate.Load(),
	}
}

// Connected reports whether the transport is up.
func (s *Session) Connected() bool {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()
	return t != nil && t.IsConnected()
}

// Close unsubscribes, drops pending messages and closes the transport if it
// is closable. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	t := s.transport
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	s.inbox.Close()
	if t == nil {
		return nil
	}
	if t.IsConnected() {
		for _, topic := range subs {
			if err := t.Unsubscribe(topic); err != nil {
				s.logger.Debug("unsubscribe on close failed", "topic", topic, "error", err)
			}
		}
	}
	if c, ok := t.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Publisher publishes on one resolved topic.
type Publisher struct {
	session   *Session
	transport Transport
	topic     string
	qos       byte
}

// Publish sends payload, unretained, at the session QoS.
//
// When the transport is an AsyncPublisher, Publish returns as soon as the
// message is queued; a broker-side failure is logged and counted in
// PublishStats later. Otherwise the transport's own Publish is used.
func (p *Publisher) Publish(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	async, ok := p.transport.(AsyncPublisher)
	if !ok {
		return p.transport.Publish(p.topic, payload, p.qos, false)
	}

	s := p.session
	s.publishPending.Add(1)
	err := async.PublishAsync(p.topic, payload, p.qos, false, func(err error) {
		s.publishPending.Add(-1)
		if err != nil {
			s.publishLate.Add(1)
			s.logger.Warn("publish not acknowledged", "topic", p.topic, "error", err)
		}
	})
	if err != nil {
		s.publishPending.Add(-1)
	}
	return err
}

// Topic returns the resolved topic.
func (p *Publisher) Topic() string {
	return p.topic
}

// Subscription identifies one subscribed topic of a session.
type Subscription struct {
	session *Session
	topic   string
}

// Topic returns the resolved topic.
func (s *Subscription) Topic() string {
	return s.topic
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
