package intent

import (
	"context"

	"go.uber.org/zap"

	"github.com/greenstead/pantryd/internal/compose"
	"github.com/greenstead/pantryd/internal/reconcile"
	"github.com/greenstead/pantryd/internal/templates"
)

// Handlers implements the four shopping-list intents. Each handler turns
// one intent into one spoken sentence; gateway failures propagate to the
// dispatcher, which ends the session with the locale's error phrase.
type Handlers struct {
	reconciler reconcile.Service
	set        *templates.Set
	composer   *compose.Composer
	logger     *zap.Logger
}

// NewHandlers wires the reconciler, the resolved template set and the
// composer into one per-process handler bundle. No state is shared across
// intents beyond these read-only collaborators.
func NewHandlers(reconciler reconcile.Service, set *templates.Set, composer *compose.Composer, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		reconciler: reconciler,
		set:        set,
		composer:   composer,
		logger:     logger,
	}
}

// AddItems puts the requested items on the list and confirms what happened.
// An utterance naming no items gets the "what should I add" fallback without
// touching the gateway.
func (h *Handlers) AddItems(ctx context.Context, in *Intent) (string, error) {
	names := in.Items()
	if len(names) == 0 {
		return h.composer.Pick(h.set.Add.Fallback), nil
	}

	added, alreadyPresent, err := h.reconciler.AddItems(ctx, names)
	if err != nil {
		return "", err
	}

	return h.composer.Combine(added, alreadyPresent, h.set.Add), nil
}

// RemoveItems takes the requested items off the list.
func (h *Handlers) RemoveItems(ctx context.Context, in *Intent) (string, error) {
	names := in.Items()
	if len(names) == 0 {
		return h.composer.Pick(h.set.Remove.Fallback), nil
	}

	removed, notFound, err := h.reconciler.RemoveItems(ctx, names)
	if err != nil {
		return "", err
	}

	return h.composer.Combine(removed, notFound, h.set.Remove), nil
}

// CheckItems answers whether the requested items are on the list. Never
// mutates anything.
func (h *Handlers) CheckItems(ctx context.Context, in *Intent) (string, error) {
	names := in.Items()
	if len(names) == 0 {
		return h.composer.Pick(h.set.Check.Fallback), nil
	}

	found, missing, err := h.reconciler.CheckItems(ctx, names)
	if err != nil {
		return "", err
	}

	return h.composer.Combine(found, missing, h.set.Check), nil
}

// ReadList narrates the whole list. Slots are ignored; the empty list has
// its own phrasing in the read pool.
func (h *Handlers) ReadList(ctx context.Context, in *Intent) (string, error) {
	names, err := h.reconciler.ReadAll(ctx)
	if err != nil {
		return "", err
	}

	return h.composer.RenderClause(names, h.set.Read), nil
}
