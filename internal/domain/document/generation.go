package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicegen/backend/internal/domain/shared"
)

// StatusChange records one lifecycle transition
type StatusChange struct {
	From GenerationStatus
	To   GenerationStatus
	At   time.Time
}

// Generation tracks a single generation request from receipt to completion.
// It is owned by one request and never shared.
type Generation struct {
	ID        uuid.UUID
	Kind      Kind
	Status    GenerationStatus
	Warnings  []*AttachmentError
	Failure   string
	StartedAt time.Time
	EndedAt   *time.Time
	History   []StatusChange

	now func() time.Time
}

// NewGeneration starts tracking a received request
func NewGeneration(kind Kind) *Generation {
	g := &Generation{
		ID:   uuid.New(),
		Kind: kind,
		now:  time.Now,
	}
	g.Status = StatusReceived
	g.StartedAt = g.now()
	return g
}

// MarkValidated moves a received request to VALIDATED
func (g *Generation) MarkValidated() error {
	return g.transition(StatusValidated)
}

// Reject ends a received request that failed validation
func (g *Generation) Reject(reason string) error {
	if err := g.transition(StatusRejected); err != nil {
		return err
	}
	g.Failure = reason
	return nil
}

// StartRendering marks the request as rendering
func (g *Generation) StartRendering() error {
	return g.transition(StatusRendering)
}

// Complete marks the request as completed
func (g *Generation) Complete() error {
	return g.transition(StatusCompleted)
}

// Fail marks the request as failed with a reason
func (g *Generation) Fail(reason string) error {
	if g.Status.IsTerminal() {
		return shared.Errorf(shared.CodeInvalidState,
			"Cannot fail a generation that is already %s", g.Status)
	}
	if err := g.transition(StatusFailed); err != nil {
		return err
	}
	g.Failure = reason
	return nil
}

// AddWarning records a dropped attachment
func (g *Generation) AddWarning(w *AttachmentError) {
	if w != nil {
		g.Warnings = append(g.Warnings, w)
	}
}

// IsTerminal returns true if the generation is in a terminal state
func (g *Generation) IsTerminal() bool {
	return g.Status.IsTerminal()
}

// Duration returns the elapsed time, up to the terminal transition if any
func (g *Generation) Duration() time.Duration {
	if g.EndedAt != nil {
		return g.EndedAt.Sub(g.StartedAt)
	}
	return g.now().Sub(g.StartedAt)
}

func (g *Generation) transition(target GenerationStatus) error {
	if !g.Status.CanTransitionTo(target) {
		return shared.Errorf(shared.CodeInvalidState,
			"Cannot move generation from %s to %s", g.Status, target)
	}
	at := g.now()
	g.History = append(g.History, StatusChange{From: g.Status, To: target, At: at})
	g.Status = target
	if target.IsTerminal() {
		g.EndedAt = &at
	}
	return nil
}
