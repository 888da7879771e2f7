package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/greenstead/pantryd/internal/templates"
)

// Subject layout mirrors the Hermes MQTT topics the original dialogue
// stack uses, translated to NATS subjects.
const (
	intentSubjectPrefix = "hermes.intent."
	endSessionSubject   = "hermes.dialogueManager.endSession"
)

// handleTimeout bounds one utterance end to end, including gateway I/O.
const handleTimeout = 30 * time.Second

var intentsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pantryd",
	Subsystem: "intent",
	Name:      "handled_total",
	Help:      "Intents handled, labeled by intent name and outcome (ok, error, decode_error).",
}, []string{"intent", "outcome"})

// Names maps the four shopping-list actions to the intent names the NLU
// publishes them under.
type Names struct {
	Add    string
	Remove string
	Check  string
	Read   string
}

// handlerFunc handles one decoded intent and returns the sentence to speak.
type handlerFunc func(ctx context.Context, in *Intent) (string, error)

// Dispatcher routes intents from NATS to handlers and ends each session
// with the rendered response. Each subscription delivers on its own
// goroutine, so handling is serialized on a mutex: one intent is fully
// classified, reconciled, and rendered before the next is accepted. The
// handlers and the composer's random source are not safe for concurrent
// use.
type Dispatcher struct {
	nc       *nats.Conn
	handlers *Handlers
	names    Names
	errPool  []string
	logger   *zap.Logger
	subs     []*nats.Subscription

	mu sync.Mutex // one intent at a time, across all subjects
}

// NewDispatcher creates a dispatcher. The template set supplies the error
// phrase spoken when the shopping list cannot be reached.
func NewDispatcher(nc *nats.Conn, handlers *Handlers, names Names, set *templates.Set, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		nc:       nc,
		handlers: handlers,
		names:    names,
		errPool:  set.Error,
		logger:   logger,
	}
}

// Start subscribes to the four intent subjects. Call Drain to unsubscribe.
func (d *Dispatcher) Start() error {
	routes := []struct {
		name string
		fn   handlerFunc
	}{
		{d.names.Add, d.handlers.AddItems},
		{d.names.Remove, d.handlers.RemoveItems},
		{d.names.Check, d.handlers.CheckItems},
		{d.names.Read, d.handlers.ReadList},
	}

	for _, route := range routes {
		subject := intentSubjectPrefix + route.name
		fn := route.fn
		name := route.name

		sub, err := d.nc.Subscribe(subject, func(msg *nats.Msg) {
			d.handle(name, fn, msg)
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", subject, err)
		}
		d.subs = append(d.subs, sub)

		d.logger.Info("subscribed to intent", zap.String("subject", subject))
	}

	return nil
}

// Drain unsubscribes from all intent subjects, letting in-flight handlers
// finish.
func (d *Dispatcher) Drain() error {
	for _, sub := range d.subs {
		if err := sub.Drain(); err != nil {
			return fmt.Errorf("drain %s: %w", sub.Subject, err)
		}
	}
	d.subs = nil
	return nil
}

// handle decodes one intent message, runs its handler, and ends the
// session. A handler error (gateway failure) ends the session with the
// locale's error phrase instead of leaving it open.
func (d *Dispatcher) handle(name string, fn handlerFunc, msg *nats.Msg) {
	d.mu.Lock()
	defer d.mu.Unlock()

	logger := d.logger.With(
		zap.String("intent", name),
		zap.String("trace_id", uuid.NewString()))

	var in Intent
	if err := json.Unmarshal(msg.Data, &in); err != nil {
		logger.Error("failed to decode intent payload",
			zap.String("subject", msg.Subject),
			zap.Error(err))
		intentsHandled.WithLabelValues(name, "decode_error").Inc()
		return
	}
	logger = logger.With(zap.String("session_id", in.SessionID))

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	text, err := fn(ctx, &in)
	outcome := "ok"
	if err != nil {
		logger.Error("intent handling failed", zap.Error(err))
		text = d.handlers.composer.Pick(d.errPool)
		outcome = "error"
	}
	intentsHandled.WithLabelValues(name, outcome).Inc()

	if err := d.endSession(in.SessionID, text); err != nil {
		logger.Error("failed to end session", zap.Error(err))
		return
	}

	logger.Debug("session ended", zap.String("text", text))
}

func (d *Dispatcher) endSession(sessionID, text string) error {
	payload, err := json.Marshal(EndSession{SessionID: sessionID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal end session: %w", err)
	}
	if err := d.nc.Publish(endSessionSubject, payload); err != nil {
		return fmt.Errorf("publish end session: %w", err)
	}
	return nil
}
