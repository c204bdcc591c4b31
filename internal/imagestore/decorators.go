package imagestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodfeed/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout bounds every call to next. A call that outlives the timeout
// fails with ErrStore.
func WithTimeout(next Store, timeout time.Duration) Store {
	if timeout <= 0 {
		return next
	}
	return &timeoutStore{next: next, timeout: timeout}
}

func (s *timeoutStore) Upload(ctx context.Context, in UploadInput) (Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	asset, err := s.next.Upload(ctx, in)
	return asset, s.wrap(ctx, "upload", err)
}

func (s *timeoutStore) Destroy(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.wrap(ctx, "destroy", s.next.Destroy(ctx, id))
}

func (s *timeoutStore) wrap(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrStore) {
		return fmt.Errorf("%w: %s timed out after %s", ErrStore, op, s.timeout)
	}
	return err
}

type instrumentedStore struct {
	next    Store
	backend string
}

// Instrumented records a span and metrics for every call to next.
func Instrumented(next Store, backend string) Store {
	return &instrumentedStore{next: next, backend: backend}
}

func (s *instrumentedStore) Upload(ctx context.Context, in UploadInput) (Asset, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "imagestore.Upload",
		attribute.String("image.backend", s.backend),
		attribute.String("image.content_type", in.ContentType),
		attribute.Int("image.size", len(in.Content)),
	)
	asset, err := s.next.Upload(ctx, in)
	if err == nil {
		span.SetAttributes(attribute.String("image.id", asset.ID))
	}
	observability.EndSpan(span, err)
	s.observe("upload", start, err)
	return asset, err
}

func (s *instrumentedStore) Destroy(ctx context.Context, id string) error {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "imagestore.Destroy",
		attribute.String("image.backend", s.backend),
		attribute.String("image.id", id),
	)
	err := s.next.Destroy(ctx, id)
	observability.EndSpan(span, err)
	s.observe("destroy", start, err)
	return err
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrRejected):
		result = "rejected"
	case err != nil:
		result = "error"
	}
	observability.ImageStoreOperations.WithLabelValues(op, result).Inc()
	observability.ImageStoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
