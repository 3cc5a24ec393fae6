package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/storehub/identity/internal/domain"
	"github.com/storehub/identity/internal/ports"
)

// runIdempotent wraps a mutating handler in an at-most-once envelope.
// A completed key replays the stored result verbatim; a live pending key means
// another call is in flight and fails with ErrIdempotencyInProgress. The
// reservation is a conditional insert, so two concurrent calls with the same
// key execute the handler at most once between them.
func runIdempotent[T any](ctx context.Context, store ports.IdempotencyStore, now func() time.Time, key string, ttl time.Duration, handler func() (T, error)) (T, error) {
	var zero T

	existing, err := store.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if existing != nil && existing.ExpiresAt.After(now()) {
		if existing.Status == ports.IdempotencyCompleted && len(existing.ResponseBody) > 0 {
			var replay T
			if err := json.Unmarshal(existing.ResponseBody, &replay); err != nil {
				return zero, fmt.Errorf("decode idempotent replay: %w", err)
			}
			return replay, nil
		}
		return zero, domain.ErrIdempotencyInProgress
	}

	if err := store.Reserve(ctx, key, now().Add(ttl)); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return zero, domain.ErrIdempotencyInProgress
		}
		return zero, err
	}

	result, err := handler()
	if err != nil {
		return zero, err
	}

	body, err := json.Marshal(result)
	if err != nil {
		return zero, fmt.Errorf("encode idempotent result: %w", err)
	}
	if err := store.Complete(ctx, key, body, now()); err != nil {
		return zero, err
	}
	return result, nil
}
