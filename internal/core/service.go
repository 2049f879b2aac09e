package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/reconcile/internal/logging"
)

// MasterReader decodes an uploaded master schedule into a raw table.
// The workbook package provides the production implementation.
type MasterReader func(name string, r io.Reader, sheet string) (*Table, error)

// ServiceConfig holds the run settings the service needs.
type ServiceConfig struct {
	MaxConcurrent int           // Runs executing at once
	MaxWait       time.Duration // Wait for a run slot before ErrTooManyRuns
	Timeout       time.Duration // Upper bound for one run
	ResultTTL     time.Duration // How long finished runs stay retrievable
	MasterSheet   string        // Workbook sheet holding the schedule
	MasterQuery   string        // Query used when no master file is uploaded
	Options       Options       // Engine options for every run
}

// DefaultServiceConfig returns the settings used by tests and the CLI.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxConcurrent: DefaultMaxConcurrentRuns,
		MaxWait:       DefaultMaxWaitTime,
		Timeout:       2 * time.Minute,
		ResultTTL:     time.Hour,
		MasterQuery:   DefaultMasterQuery,
		Options:       DefaultOptions(),
	}
}

// RunRequest is the input of one reconciliation run.
type RunRequest struct {
	MasterName string        // Master file name; selects the decoder
	Master     io.Reader     // nil loads the master from the database
	Sources    []SourceInput // Secondary datasets in merge order
}

// RunRecord is a finished run kept in memory until its TTL expires.
type RunRecord struct {
	ID         string        `json:"id"`
	MasterName string        `json:"master_name"`
	CreatedAt  time.Time     `json:"created_at"`
	Duration   time.Duration `json:"duration"`
	Result     *Result       `json:"result"`
	Failures   []string      `json:"failures,omitempty"`
	ClientIP   string        `json:"-"`
}

// Complete reports whether every source was reconciled.
func (r *RunRecord) Complete() bool {
	return r.Result != nil && r.Result.Complete
}

// Service runs reconciliations and keeps their results for a while.
// It is safe for concurrent use.
type Service struct {
	db         DBTX
	readMaster MasterReader
	cfg        ServiceConfig
	limiter    *RunLimiter

	mu     sync.RWMutex
	runs   map[string]*RunRecord
	timers map[string]*time.Timer
}

// NewService creates a Service. db may be nil when masters are always uploaded.
func NewService(db DBTX, readMaster MasterReader, cfg ServiceConfig) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultServiceConfig().Timeout
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = DefaultServiceConfig().ResultTTL
	}
	if cfg.MasterQuery == "" {
		cfg.MasterQuery = DefaultMasterQuery
	}
	return &Service{
		db:         db,
		readMaster: readMaster,
		cfg:        cfg,
		limiter:    NewRunLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		runs:       make(map[string]*RunRecord),
		timers:     make(map[string]*time.Timer),
	}
}

// ListSources returns information about all registered source kinds.
func (s *Service) ListSources() []SourceInfo {
	return Kinds()
}

// HasDatabase reports whether the master can be loaded without an upload.
func (s *Service) HasDatabase() bool {
	return s.db != nil
}

// Run executes one reconciliation and stores the outcome.
//
// An incomplete run (some sources failed) is stored and returned together
// with its *RunError. Any other error means nothing was stored.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunRecord, error) {
	if len(req.Sources) == 0 {
		return nil, errors.New("no file provided: at least one source is required")
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	id := uuid.New().String()
	ctx = logging.WithRunID(ctx, id)
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	log := logging.WithFields(ctx,
		"master", req.MasterName,
		"sources", len(req.Sources),
		"client_ip", GetIPAddressFromContext(ctx),
		"user_agent", GetUserAgentFromContext(ctx),
	)
	log.Info("run started")
	start := time.Now()

	raw, err := s.loadMaster(ctx, req)
	if err != nil {
		log.Warn("master rejected", "error", err)
		return nil, err
	}

	opts := s.cfg.Options
	opts.Logger = log
	res, err := Reconcile(ctx, raw, req.Sources, opts)

	var runErr *RunError
	if err != nil && !errors.As(err, &runErr) {
		log.Warn("run failed", "error", err)
		return nil, err
	}

	rec := &RunRecord{
		ID:         id,
		MasterName: req.MasterName,
		CreatedAt:  start,
		Duration:   time.Since(start),
		Result:     res,
		Failures:   res.FailureMessages(),
		ClientIP:   GetIPAddressFromContext(ctx),
	}
	s.store(rec)

	log.Info("run finished",
		"complete", res.Complete,
		"rows", len(res.Table.Rows),
		"duration_ms", rec.Duration.Milliseconds(),
	)
	if runErr != nil {
		return rec, runErr
	}
	return rec, nil
}

func (s *Service) loadMaster(ctx context.Context, req RunRequest) (*Table, error) {
	if req.Master != nil {
		if s.readMaster == nil {
			return nil, fmt.Errorf("unsupported master file %q: no reader configured", req.MasterName)
		}
		return s.readMaster(req.MasterName, req.Master, s.cfg.MasterSheet)
	}
	if s.db == nil {
		return nil, errors.New("no file provided: master schedule is required")
	}
	return LoadMasterFromDB(ctx, s.db, s.cfg.MasterQuery)
}

// store keeps a record until ResultTTL passes.
func (s *Service) store(rec *RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[rec.ID] = rec
	s.timers[rec.ID] = time.AfterFunc(s.cfg.ResultTTL, func() {
		s.forget(rec.ID)
	})
}

func (s *Service) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, id)
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Get returns a stored run or ErrRunNotFound.
func (s *Service) Get(id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return rec, nil
}

// List returns stored runs, newest first.
func (s *Service) List() []*RunRecord {
	s.mu.RLock()
	out := make([]*RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// LimiterStatus returns the run limiter state.
func (s *Service) LimiterStatus() RunLimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until in-flight runs finish or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Close drops every stored run and stops their timers.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.runs = make(map[string]*RunRecord)
}
