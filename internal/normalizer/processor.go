// Package normalizer turns raw extracted meeting fields into canonical records:
// title summaries, committee names, long-form dates and invariant checks.
package normalizer

import (
	"fmt"
	"time"

	"hearings/internal/models"
)

// Processor handles data processing and transformation.
type Processor struct {
	validator   *Validator
	transformer *Transformer
}

// NewProcessor creates a processor for one chamber, resolving committee
// codes against table.
func NewProcessor(chamber models.Chamber, source models.Source, table CommitteeTable) *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(chamber, source, NewCommitteeResolver(table)),
	}
}

// WithClock sets the time source used for last_seen_at.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.transformer.now = now

	return p
}

// Now returns the time used for last_seen_at.
func (p *Processor) Now() time.Time {
	return p.transformer.now()
}

// Process transforms extracted fields into a meeting. The record is always
// returned; a non-nil error lists the invariants it breaks.
func (p *Processor) Process(f Fields) (models.Meeting, error) {
	m := p.transformer.Transform(f)

	if err := p.validator.Validate(m); err != nil {
		return m, fmt.Errorf("validation failed for %s: %w", m.Key(), err)
	}

	return m, nil
}

// Diagnose counts invariant violations over a batch.
func (p *Processor) Diagnose(meetings []models.Meeting) Diagnostics {
	return p.validator.Diagnose(meetings)
}
