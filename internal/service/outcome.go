// Package service implements the post, comment, profile and account
// workflows. Every mutating operation takes an explicit acting identity and
// reports what happened as an Outcome carrying the status messages to show.
package service

import (
	"context"
	"errors"
	"log/slog"

	"foodfeed/internal/imagestore"
	"foodfeed/internal/models"
	"foodfeed/internal/observability"
	"foodfeed/internal/validation"
)

// OutcomeKind classifies how a mutating operation ended.
type OutcomeKind string

const (
	Succeeded    OutcomeKind = "succeeded"
	AuthRequired OutcomeKind = "auth_required"
	Denied       OutcomeKind = "denied"
	Invalid      OutcomeKind = "invalid"
	NoChange     OutcomeKind = "no_change"
	Failed       OutcomeKind = "failed"
)

// Outcome is the result of a mutating operation. Messages are ordered for
// display. Operations return a Go error only when a referenced entity does
// not exist.
type Outcome struct {
	Kind     OutcomeKind
	Messages []models.Message
	Errors   validation.Result

	Post    *models.Post
	Comment *models.Comment
	Profile *models.Profile
}

// OK reports whether the operation changed state as requested.
func (o Outcome) OK() bool {
	return o.Kind == Succeeded
}

func succeeded(text string) Outcome {
	return Outcome{Kind: Succeeded, Messages: []models.Message{models.Success(text)}}
}

func authRequired(text string) Outcome {
	return Outcome{Kind: AuthRequired, Messages: []models.Message{models.Info(text)}}
}

func denied(text string) Outcome {
	return Outcome{Kind: Denied, Messages: []models.Message{models.Error(text)}}
}

// invalid lists the image format rejection, when present, before the
// summary failure message.
func invalid(r validation.Result, summary string) Outcome {
	var msgs []models.Message
	for _, m := range r.Field("image") {
		if m == validation.InvalidImageFormatMessage {
			msgs = append(msgs, models.Error(m))
			break
		}
	}
	msgs = append(msgs, models.Error(summary))
	return Outcome{Kind: Invalid, Messages: msgs, Errors: r}
}

// failed logs an infrastructure error and hides it behind the summary.
func failed(ctx context.Context, action string, err error, summary string) Outcome {
	slog.ErrorContext(ctx, "operation failed", "action", action, "error", err)
	return Outcome{Kind: Failed, Messages: []models.Message{
		models.Error(MsgSomethingWentWrong),
		models.Error(summary),
	}}
}

// record counts the outcome of action.
func record(action string, o Outcome) Outcome {
	observability.Outcomes.WithLabelValues(action, string(o.Kind)).Inc()
	return o
}

// isNotFound reports whether err should surface as a not-found response.
func isNotFound(err error) bool {
	return models.HasCode(err, models.CodeNotFound)
}

// destroyImage removes a replaced or orphaned image. The placeholder is
// skipped. Failures are logged and never undo the surrounding change.
func destroyImage(ctx context.Context, images imagestore.Store, id string) {
	if imagestore.IsPlaceholder(id) {
		return
	}
	if err := images.Destroy(ctx, id); err != nil {
		slog.WarnContext(ctx, "failed to destroy image", "image_id", id, "error", err)
	}
}

func isRejectedByStore(err error) bool {
	return errors.Is(err, imagestore.ErrRejected)
}
