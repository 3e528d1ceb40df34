/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"
	"sync"
)

// StartupPhase tracks where the boot sequence currently is.
type StartupPhase int

const (
	PhaseUnstarted StartupPhase = iota
	PhaseProbing
	PhaseInitializing
	PhaseSeeding
	PhaseReady
	PhaseFailed
)

func (p StartupPhase) String() string {
	switch p {
	case PhaseUnstarted:
		return "unstarted"
	case PhaseProbing:
		return "probing"
	case PhaseInitializing:
		return "initializing"
	case PhaseSeeding:
		return "seeding"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StartupError reports which boot phase failed.
type StartupError struct {
	Phase StartupPhase
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed during %s: %v", e.Phase, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// Startup sequences the boot phases against one database: probe until the
// server answers, apply the schema, seed initial data. It runs once per
// process, any phase failure is terminal.
type Startup struct {
	config  *Config
	factory *BaseDatabaseFactory
	logger  Logger
	mu      sync.Mutex
	phase   StartupPhase
}

// NewStartup creates an orchestrator for the given configuration.
func NewStartup(cfg *Config) *Startup {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Startup{
		config: cfg,
		logger: GetLogger(),
		phase:  PhaseUnstarted,
	}
}

// SetLogger sets the logger used for phase transitions.
func (s *Startup) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Phase returns the current startup phase.
func (s *Startup) Phase() StartupPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Startup) setPhase(p StartupPhase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
	s.logger.Info("Startup phase", "phase", p.String())
}

func (s *Startup) fail(p StartupPhase, err error) error {
	s.mu.Lock()
	s.phase = PhaseFailed
	s.mu.Unlock()
	s.logger.Error("Startup failed", "phase", p.String(), "error", err)
	return &StartupError{Phase: p, Err: err}
}

// Run executes the startup sequence. On success the connection becomes the
// package-level database and the phase is PhaseReady.
func (s *Startup) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.phase != PhaseUnstarted {
		phase := s.phase
		s.mu.Unlock()
		return fmt.Errorf("startup already ran, phase is %s", phase)
	}
	s.phase = PhaseProbing
	s.mu.Unlock()
	s.logger.Info("Startup phase", "phase", PhaseProbing.String())

	factory := NewDatabaseFactory()
	factory.SetLogger(s.logger)
	manager, err := factory.CreateFromConfig(s.config)
	if err != nil {
		return s.fail(PhaseProbing, err)
	}
	s.factory = factory

	prober := NewProber(s.config.ProberConfig, ManagerProbe(manager), s.logger)
	if err := prober.WaitReady(ctx); err != nil {
		return s.fail(PhaseProbing, err)
	}

	s.setPhase(PhaseInitializing)
	if s.config.SchemaConfig.ApplyOnStartup {
		if err := manager.InitSchema(ctx); err != nil {
			return s.fail(PhaseInitializing, err)
		}
	} else {
		s.logger.Info("Schema apply on startup is disabled, skipping")
	}

	s.setPhase(PhaseSeeding)
	if err := manager.InitData(ctx); err != nil {
		return s.fail(PhaseSeeding, err)
	}

	// install as the package-level connection
	globalFactory = factory
	globalConfig = s.config
	DB = manager.GetDB()

	s.setPhase(PhaseReady)
	return nil
}

// Manager returns the database manager, nil before Run.
func (s *Startup) Manager() AbstractDatabaseManager {
	if s.factory == nil {
		return nil
	}
	return s.factory.GetManager()
}

// Close disconnects the database created by Run.
func (s *Startup) Close() error {
	if s.factory == nil {
		return nil
	}
	return s.factory.Close()
}
