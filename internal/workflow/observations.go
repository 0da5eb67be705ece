package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Severity grades a reviewer observation.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var validSeverities = map[Severity]bool{
	SeverityLow:      true,
	SeverityMedium:   true,
	SeverityHigh:     true,
	SeverityCritical: true,
}

// IsValid returns true if the severity is a known grade.
func (s Severity) IsValid() bool {
	return validSeverities[s]
}

// Observation is a reviewer-raised concern attached to a document. The ledger
// is append-only: entries are never deleted or reordered, so a full line of
// questioning survives across return and reject cycles, including superseded
// answers from prior cycles.
type Observation struct {
	ID           uuid.UUID  `json:"id"`
	Text         string     `json:"text"`
	Severity     Severity   `json:"severity"`
	AddedBy      string     `json:"added_by"`
	AddedAt      time.Time  `json:"added_at"`
	Answer       *string    `json:"answer,omitempty"`
	AnsweredBy   *string    `json:"answered_by,omitempty"`
	AnsweredAt   *time.Time `json:"answered_at,omitempty"`
	Resolved     bool       `json:"resolved"`
	AttachmentID *uuid.UUID `json:"attachment_id,omitempty"`
}

func (o Observation) clone() Observation {
	out := o
	if o.Answer != nil {
		v := *o.Answer
		out.Answer = &v
	}
	if o.AnsweredBy != nil {
		v := *o.AnsweredBy
		out.AnsweredBy = &v
	}
	if o.AnsweredAt != nil {
		v := *o.AnsweredAt
		out.AnsweredAt = &v
	}
	if o.AttachmentID != nil {
		v := *o.AttachmentID
		out.AttachmentID = &v
	}
	return out
}

// AddObservation appends a structured observation to the document ledger.
// Text must be non-empty and severity valid.
func AddObservation(doc *Document, input ObservationInput, actor Actor, now time.Time) (*Observation, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("%w: observation text required", ErrValidation)
	}
	if !input.Severity.IsValid() {
		return nil, fmt.Errorf("%w: invalid severity %q", ErrValidation, input.Severity)
	}

	obs := Observation{
		ID:           uuid.New(),
		Text:         input.Text,
		Severity:     input.Severity,
		AddedBy:      actor.ID,
		AddedAt:      now,
		AttachmentID: input.AttachmentID,
	}
	doc.Observations = append(doc.Observations, obs)

	return &doc.Observations[len(doc.Observations)-1], nil
}

// RespondToObservation records the originator's answer on an existing
// observation. It sets answer, answeredBy, and answeredAt together; it never
// sets resolved, which is a separate explicit operation.
func RespondToObservation(doc *Document, observationID uuid.UUID, answer string, actor Actor, now time.Time) error {
	if strings.TrimSpace(answer) == "" {
		return fmt.Errorf("%w: answer text required", ErrValidation)
	}

	obs := findObservation(doc, observationID)
	if obs == nil {
		return fmt.Errorf("%w: observation %s", ErrNotFound, observationID)
	}

	obs.Answer = &answer
	by := actor.ID
	obs.AnsweredBy = &by
	at := now
	obs.AnsweredAt = &at
	return nil
}

// ResolveObservation explicitly marks an observation as closed. The engine
// never infers resolution from the presence of an answer.
func ResolveObservation(doc *Document, observationID uuid.UUID) error {
	obs := findObservation(doc, observationID)
	if obs == nil {
		return fmt.Errorf("%w: observation %s", ErrNotFound, observationID)
	}
	obs.Resolved = true
	return nil
}

// Unanswered returns the observations that have no recorded answer.
func Unanswered(doc *Document) []Observation {
	var out []Observation
	for _, o := range doc.Observations {
		if o.Answer == nil {
			out = append(out, o)
		}
	}
	return out
}

func findObservation(doc *Document, id uuid.UUID) *Observation {
	for i := range doc.Observations {
		if doc.Observations[i].ID == id {
			return &doc.Observations[i]
		}
	}
	return nil
}
