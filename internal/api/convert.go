package api

import (
	"context"
	"fmt"

	"postmark/internal/dataset"
	"postmark/internal/fieldtext"
	"postmark/internal/review"
)

// NewRecordView projects a session view into its display form, resolving
// the text artifacts through the field reader: postcode and region as
// first lines, words as the whole text.
func NewRecordView(view review.View) RecordView {
	out := RecordView{
		Key:      view.Record.Key,
		Position: view.Position,
		Total:    view.Total,
		Header:   fmt.Sprintf("%s  (%d/%d)", view.Record.Key, view.Position, view.Total),

		Image:        view.Record.Image,
		PostcodeCrop: view.Record.PostcodeCrop,
		ReceiverCrop: view.Record.ReceiverCrop,

		Postcode: fieldtext.FirstLine(view.Record.PostcodeText),
		Words:    fieldtext.All(view.Record.WordsText),
		Region:   fieldtext.FirstLine(view.Record.RegionText),
	}
	if view.Annotation != nil {
		out.Annotated = true
		out.Label = string(view.Annotation.Label)
		out.Explanation = view.Annotation.Explanation
	}
	return out
}

// NewSessionSummary builds the status DTO for one session.
func NewSessionSummary(ctx context.Context, session *review.Session, current bool) (SessionSummary, error) {
	annotated, err := session.AnnotatedCount(ctx)
	if err != nil {
		return SessionSummary{}, err
	}
	return SessionSummary{
		ID:          session.ID,
		Archive:     session.Archive,
		Fingerprint: session.Fingerprint,
		Root:        session.Root(),
		State:       string(session.State()),
		Records:     session.Len(),
		Annotated:   annotated,
		Collisions:  len(session.Collisions()),
		Cursor:      session.Cursor(),
		CreatedAt:   session.CreatedAt,
		Current:     current,
	}, nil
}

// NewCollisions converts recorded index collisions.
func NewCollisions(collisions []dataset.Collision) []Collision {
	out := make([]Collision, 0, len(collisions))
	for _, c := range collisions {
		out = append(out, Collision{Key: c.Key, Survivor: c.Survivor, Shadowed: c.Shadowed})
	}
	return out
}
