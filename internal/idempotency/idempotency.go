// Package idempotency deduplicates submission retries carrying an
// Idempotency-Key header. A key is reserved with SETNX, marked complete with
// the submission id, and released if the insert fails.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingValue = "pending"
	donePrefix   = "done:"

	// PendingTTL bounds how long an unfinished reservation blocks retries.
	PendingTTL = 2 * time.Minute
)

// State is the outcome of Reserve.
type State int

const (
	// Reserved means the caller owns the key and must Complete or Release it.
	Reserved State = iota
	// Completed means an earlier request finished; SubmissionID is set.
	Completed
	// InFlight means an earlier request holds the key and has not finished.
	InFlight
)

type Reservation struct {
	State        State
	SubmissionID string
}

// Store keeps reservations for PendingTTL and completed records for ttl.
type Store struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewStore(client redis.Cmdable, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func redisKey(formID, key string) string {
	return fmt.Sprintf("idem:submit:%s:%s", formID, key)
}

func (s *Store) Reserve(ctx context.Context, formID, key string) (Reservation, error) {
	rk := redisKey(formID, key)
	ok, err := s.client.SetNX(ctx, rk, pendingValue, PendingTTL).Result()
	if err != nil {
		return Reservation{}, fmt.Errorf("reserve idempotency key: %w", err)
	}
	if ok {
		return Reservation{State: Reserved}, nil
	}

	val, err := s.client.Get(ctx, rk).Result()
	if errors.Is(err, redis.Nil) {
		// expired between the two calls
		return s.Reserve(ctx, formID, key)
	}
	if err != nil {
		return Reservation{}, fmt.Errorf("read idempotency key: %w", err)
	}
	if id, found := strings.CutPrefix(val, donePrefix); found {
		return Reservation{State: Completed, SubmissionID: id}, nil
	}
	return Reservation{State: InFlight}, nil
}

func (s *Store) Complete(ctx context.Context, formID, key, submissionID string) error {
	if err := s.client.Set(ctx, redisKey(formID, key), donePrefix+submissionID, s.ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

func (s *Store) Release(ctx context.Context, formID, key string) error {
	if err := s.client.Del(ctx, redisKey(formID, key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}
