package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/share-engine/interfaces"
)

// MultiStorageBackend implements interfaces.ShareStore using multiple backends with fallback.
// Writes go to every available backend; reads come from the first backend holding the record.
type MultiStorageBackend struct {
	backends []interfaces.ShareStore
	log      *slog.Logger
}

// NewMultiStorageBackend creates a new multi-storage backend with fallback
func NewMultiStorageBackend(backends []interfaces.ShareStore, logger *slog.Logger) *MultiStorageBackend {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiStorageBackend{
		backends: backends,
		log:      logger,
	}
}

// Fetch returns the record from the first available backend that has it.
// If every backend that answered reported the record missing, ErrShareNotFound is returned.
func (m *MultiStorageBackend) Fetch(ctx context.Context, id string) (*interfaces.ShareRecord, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	start := time.Now()
	var errs []error
	notFound := 0

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable",
				slog.String("backend_name", backend.Name()),
				slog.String("id", id))
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), interfaces.ErrBackendUnavailable))
			continue
		}

		record, err := backend.Fetch(ctx, id)
		if err == nil {
			m.log.Debug("Fetched share record",
				slog.String("backend_name", backend.Name()),
				slog.String("id", id),
				slog.Duration("duration", time.Since(start)))
			return record, nil
		}

		if errors.Is(err, interfaces.ErrShareNotFound) {
			notFound++
			continue
		}
		errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
		m.log.Debug("Failed to fetch from backend",
			slog.String("backend_name", backend.Name()),
			slog.String("id", id),
			"err", err)
	}

	if len(errs) == 0 {
		return nil, interfaces.ErrShareNotFound
	}

	m.log.Error("All backends failed to fetch share record",
		slog.String("id", id),
		slog.Int("failed_backends", len(errs)),
		slog.Int("missing_backends", notFound),
		slog.Duration("duration", time.Since(start)))

	if notFound > 0 {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrShareNotFound, errors.Join(errs...))
	}
	return nil, fmt.Errorf("all backends failed to fetch %s: %w", id, errors.Join(errs...))
}

// Store saves the record to all available backends and succeeds if any write succeeds.
func (m *MultiStorageBackend) Store(ctx context.Context, record *interfaces.ShareRecord) error {
	start := time.Now()
	stored := 0
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Backend unavailable", slog.String("backend_name", backend.Name()))
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), interfaces.ErrBackendUnavailable))
			continue
		}

		if err := backend.Store(ctx, record); err != nil {
			if errors.Is(err, interfaces.ErrInvalidArgument) {
				return err
			}
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
			m.log.Debug("Failed to store to backend",
				slog.String("backend_name", backend.Name()),
				"err", err)
			continue
		}
		stored++
	}

	if stored == 0 {
		m.log.Error("All backends failed to store share record",
			slog.Int("failed_backends", len(errs)),
			slog.Duration("duration", time.Since(start)))
		return fmt.Errorf("all backends failed to store share record: %w", errors.Join(errs...))
	}

	m.log.Info("Stored share record",
		slog.String("id", record.ID()),
		slog.Int("backends", stored),
		slog.Duration("duration", time.Since(start)))
	if len(errs) > 0 {
		m.log.Warn("Share record stored on a subset of backends", slog.String("id", record.ID()), slog.Int("failed_backends", len(errs)))
	}
	return nil
}

// Delete removes the record from every available backend.
// Returns ErrShareNotFound if no backend had it.
func (m *MultiStorageBackend) Delete(ctx context.Context, id string) error {
	deleted := 0
	var errs []error

	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), interfaces.ErrBackendUnavailable))
			continue
		}

		err := backend.Delete(ctx, id)
		switch {
		case err == nil:
			deleted++
		case errors.Is(err, interfaces.ErrShareNotFound):
		case errors.Is(err, interfaces.ErrInvalidArgument):
			return err
		default:
			errs = append(errs, fmt.Errorf("%s: %w", backend.Name(), err))
		}
	}

	if len(errs) > 0 {
		m.log.Warn("Share record deletion incomplete",
			slog.String("id", id),
			slog.Int("deleted", deleted),
			slog.Int("failed_backends", len(errs)))
		return fmt.Errorf("failed to delete %s from all backends: %w", id, errors.Join(errs...))
	}
	if deleted == 0 {
		return interfaces.ErrShareNotFound
	}
	return nil
}

// Available checks if any backend is available
func (m *MultiStorageBackend) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns the name of this backend
func (m *MultiStorageBackend) Name() string {
	return "multi-storage"
}

// LocationURI returns the URI of this backend
func (m *MultiStorageBackend) LocationURI() string {
	var locations []string
	for _, backend := range m.backends {
		locations = append(locations, backend.LocationURI())
	}

	return "multi:[" + strings.Join(locations, ",") + "]"
}
