package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownVendor is reported before any writes when a vendor is
	// outside the closed enumeration.
	ErrUnknownVendor = errors.New("unknown vendor")

	// ErrInvalidPrefix is reported before any writes when a vendor feed
	// contains an empty or oversized hash prefix.
	ErrInvalidPrefix = errors.New("invalid hash prefix")

	// ErrSourceNotRegistered means a shard operation was attempted for a
	// source name never passed to RegisterSources.
	ErrSourceNotRegistered = errors.New("source not registered")
)

// ShardError wraps a storage failure with the shard it happened on, so
// fan-out callers can retry just that shard.
type ShardError struct {
	ShardID uint
	Shard   string
	Err     error
}

func (e *ShardError) Error() string {
	return fmt.Sprintf("shard %s: %s", e.Shard, e.Err)
}

func (e *ShardError) Unwrap() error { return e.Err }

// IntegrityError means stored hashes no longer match their recomputed
// values. The store is never rewritten to hide it.
type IntegrityError struct {
	ShardID uint
	URLs    []string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("shard %d: stored hash mismatch for %d urls (first: %s)",
		e.ShardID, len(e.URLs), e.URLs[0])
}

// FanOutError collects per-shard failures from a multi-shard operation.
// Results gathered from the shards that succeeded are still valid; a
// caller holding one of these must not treat them as complete.
type FanOutError struct {
	Op     string
	Total  int
	Errors []*ShardError
}

func (e *FanOutError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, se := range e.Errors {
		parts[i] = se.Error()
	}
	return fmt.Sprintf("%s: %d/%d shards failed: %s",
		e.Op, len(e.Errors), e.Total, strings.Join(parts, "; "))
}

// AllFailed reports whether no shard succeeded.
func (e *FanOutError) AllFailed() bool {
	return len(e.Errors) == e.Total
}

// fanOutError returns nil when no shard failed, keeping the "nil error
// means complete result" contract.
func fanOutError(op string, total int, shardErrs []*ShardError) error {
	if len(shardErrs) == 0 {
		return nil
	}
	return &FanOutError{Op: op, Total: total, Errors: shardErrs}
}
