// Package services wires the core transformations to persistence: it owns
// the in-memory dataset copy one session works on and the optimistic
// concurrency discipline around it.
package services

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/titguild/guildboard/internal/modules/companies"
	"github.com/titguild/guildboard/internal/modules/snapshot"
)

// DatasetService holds this session's in-memory dataset and the fingerprint
// it last observed in the persisted store.
//
// Concurrency model is optimistic: multiple sessions may hold their own
// copies. Before acting, a session calls Sync; if the persisted fingerprint
// moved, the in-memory copy is discarded and the fresh one adopted
// (last-writer-wins at full-reload granularity, no merging).
type DatasetService struct {
	repo    *companies.Repository
	archive *snapshot.Archive
	log     zerolog.Logger

	mu        sync.Mutex
	current   companies.Dataset
	lastToken snapshot.Token
}

// NewDatasetService creates the service. The archive may be nil to disable
// snapshot history.
func NewDatasetService(repo *companies.Repository, archive *snapshot.Archive, log zerolog.Logger) *DatasetService {
	return &DatasetService{
		repo:    repo,
		archive: archive,
		log:     log.With().Str("service", "dataset").Logger(),
	}
}

// Init loads the persisted dataset into memory and records its fingerprint.
func (s *DatasetService) Init() error {
	ds, err := s.repo.Load()
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	token, err := snapshot.Fingerprint(ds)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = ds
	s.lastToken = token
	s.mu.Unlock()

	s.log.Info().Int("companies", len(ds)).Msg("Dataset loaded")
	return nil
}

// Current returns the in-memory dataset. Callers treat it as read-only and
// go through Replace to mutate.
func (s *DatasetService) Current() companies.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Token returns the fingerprint this session last observed.
func (s *DatasetService) Token() snapshot.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastToken
}

// Sync reloads the persisted dataset, fingerprints it and compares against
// the last observed token. On divergence the in-memory copy is dropped in
// favor of the persisted one and true is returned so the caller can surface
// a "changed externally" signal. Unsaved in-memory edits lose silently;
// that is the contract.
func (s *DatasetService) Sync() (bool, error) {
	fresh, err := s.repo.Load()
	if err != nil {
		return false, fmt.Errorf("failed to reload dataset: %w", err)
	}

	token, err := snapshot.Fingerprint(fresh)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !snapshot.HasDiverged(s.lastToken, token) {
		return false, nil
	}

	s.log.Warn().
		Str("had", string(s.lastToken)).
		Str("found", string(token)).
		Msg("Persisted dataset changed externally, discarding in-memory copy")

	s.current = fresh
	s.lastToken = token
	return true, nil
}

// Replace validates, persists and adopts a new dataset. Companies with
// empty or duplicate good names are rejected before anything is written.
func (s *DatasetService) Replace(ds companies.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}

	if err := s.repo.Save(ds); err != nil {
		return fmt.Errorf("failed to persist dataset: %w", err)
	}

	token, err := snapshot.Fingerprint(ds)
	if err != nil {
		return err
	}

	if s.archive != nil {
		if err := s.archive.Record(ds, token); err != nil {
			// Archive failures are logged, not fatal: the save itself held.
			s.log.Warn().Err(err).Msg("Failed to record snapshot")
		}
	}

	s.mu.Lock()
	s.current = ds
	s.lastToken = token
	s.mu.Unlock()

	s.log.Info().Int("companies", len(ds)).Str("fingerprint", string(token)).Msg("Dataset replaced")
	return nil
}
