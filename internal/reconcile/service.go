package reconcile

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/greenstead/pantryd/internal/bring"
)

const instrumentationName = "github.com/greenstead/pantryd/internal/reconcile"

// Service reconciles requested item names against the remote list.
type Service interface {
	// AddItems puts every name that is not yet on the list onto it.
	// Returns the names added and the names that were already present,
	// both in request order.
	AddItems(ctx context.Context, names []string) (added, alreadyPresent []string, err error)

	// RemoveItems marks every name currently on the list as consumed.
	// Returns the names removed and the names that were not found,
	// both in request order.
	RemoveItems(ctx context.Context, names []string) (removed, notFound []string, err error)

	// CheckItems reports which names are on the list. Performs no mutation.
	CheckItems(ctx context.Context, names []string) (found, missing []string, err error)

	// ReadAll returns every name currently on the list, in list order.
	ReadAll(ctx context.Context) ([]string, error)
}

// service implements Service against a bring.Client.
type service struct {
	gateway bring.Client
	logger  *zap.Logger

	tracer    trace.Tracer
	meter     metric.Meter
	opCounter metric.Int64Counter
	mutations metric.Int64Counter
}

// NewService creates a reconciliation service backed by the gateway.
func NewService(gateway bring.Client, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &service{
		gateway: gateway,
		logger:  logger,
		tracer:  otel.Tracer(instrumentationName),
		meter:   otel.Meter(instrumentationName),
	}

	var err error
	s.opCounter, err = s.meter.Int64Counter(
		"pantryd.reconcile.operations_total",
		metric.WithDescription("Reconcile operations, labeled by operation (add, remove, check, read)."),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		logger.Warn("failed to create operations counter", zap.Error(err))
	}

	s.mutations, err = s.meter.Int64Counter(
		"pantryd.reconcile.mutations_total",
		metric.WithDescription("Gateway mutations applied, labeled by mutation (add, consume)."),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		logger.Warn("failed to create mutations counter", zap.Error(err))
	}

	return s
}

// AddItems snapshots the list once, adds every absent name, and reports
// the rest as already present.
func (s *service) AddItems(ctx context.Context, names []string) ([]string, []string, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.AddItems",
		trace.WithAttributes(attribute.Int("request_count", len(names))))
	defer span.End()
	s.count(ctx, "add")

	snapshot, err := s.gateway.CurrentItems(ctx)
	if err != nil {
		return nil, nil, s.fail(span, fmt.Errorf("read current items: %w", err))
	}

	toAdd, alreadyPresent := classify(snapshot, names, notOnList)
	for _, name := range toAdd {
		if err := s.gateway.AddItem(ctx, name); err != nil {
			return nil, nil, s.fail(span, fmt.Errorf("add item %q: %w", name, err))
		}
		if s.mutations != nil {
			s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("mutation", "add")))
		}
	}

	s.logger.Debug("add reconciled",
		zap.Strings("added", toAdd),
		zap.Strings("already_present", alreadyPresent))

	return toAdd, alreadyPresent, nil
}

// RemoveItems snapshots the list once, marks every present name consumed,
// and reports the rest as not found. Absent names never trigger a mutation.
func (s *service) RemoveItems(ctx context.Context, names []string) ([]string, []string, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.RemoveItems",
		trace.WithAttributes(attribute.Int("request_count", len(names))))
	defer span.End()
	s.count(ctx, "remove")

	snapshot, err := s.gateway.CurrentItems(ctx)
	if err != nil {
		return nil, nil, s.fail(span, fmt.Errorf("read current items: %w", err))
	}

	toRemove, notFound := classify(snapshot, names, onList)
	for _, name := range toRemove {
		if err := s.gateway.MarkConsumed(ctx, name); err != nil {
			return nil, nil, s.fail(span, fmt.Errorf("mark item %q consumed: %w", name, err))
		}
		if s.mutations != nil {
			s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("mutation", "consume")))
		}
	}

	s.logger.Debug("remove reconciled",
		zap.Strings("removed", toRemove),
		zap.Strings("not_found", notFound))

	return toRemove, notFound, nil
}

// CheckItems reports which names are on the list. Pure read; calling it
// twice against an unchanged list yields identical results.
func (s *service) CheckItems(ctx context.Context, names []string) ([]string, []string, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.CheckItems",
		trace.WithAttributes(attribute.Int("request_count", len(names))))
	defer span.End()
	s.count(ctx, "check")

	snapshot, err := s.gateway.CurrentItems(ctx)
	if err != nil {
		return nil, nil, s.fail(span, fmt.Errorf("read current items: %w", err))
	}

	found, missing := classify(snapshot, names, onList)
	return found, missing, nil
}

// ReadAll returns the names on the list, in list order, for narration.
func (s *service) ReadAll(ctx context.Context) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "reconcile.ReadAll")
	defer span.End()
	s.count(ctx, "read")

	snapshot, err := s.gateway.CurrentItems(ctx)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("read current items: %w", err))
	}

	names := make([]string, len(snapshot))
	for i, item := range snapshot {
		names[i] = item.Name
	}
	return names, nil
}

func (s *service) count(ctx context.Context, op string) {
	if s.opCounter != nil {
		s.opCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
	}
}

func (s *service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
