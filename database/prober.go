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
	"time"

	"github.com/sethvargo/go-retry"
)

// ProbeFunc checks the database once and reports whether it answered.
type ProbeFunc func(ctx context.Context) error

// Prober blocks startup until the database answers a trivial query.
// It retries at a fixed interval, bounded by both an attempt count and
// a total elapsed budget, whichever is exhausted first.
type Prober struct {
	config ProberConfig
	probe  ProbeFunc
	logger Logger
}

// NewProber creates a readiness prober. The probe function is called once
// per attempt, any non-nil error counts as "not ready yet".
func NewProber(config ProberConfig, probe ProbeFunc, logger Logger) *Prober {
	if config.Interval <= 0 {
		config.Interval = time.Second
	}
	if logger == nil {
		logger = GetLogger()
	}
	return &Prober{
		config: config,
		probe:  probe,
		logger: logger,
	}
}

// ManagerProbe returns a ProbeFunc that connects through the manager and
// round-trips a trivial query. Connect is a no-op once established, so the
// same probe keeps working across attempts.
func ManagerProbe(dm AbstractDatabaseManager) ProbeFunc {
	return func(ctx context.Context) error {
		if err := dm.Connect(ctx); err != nil {
			return err
		}
		db := dm.GetDB()
		if db == nil {
			return fmt.Errorf("database not connected")
		}
		var one int
		return db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
	}
}

// WaitReady blocks until a probe succeeds or the retry budget is exhausted.
// Exhaustion wraps ErrConnectionUnavailable, treat it as fatal. Context
// cancellation is returned as-is.
func (p *Prober) WaitReady(ctx context.Context) error {
	if p.probe == nil {
		return fmt.Errorf("prober has no probe function")
	}

	var attempts int
	start := time.Now()

	backoff := retry.NewConstant(p.config.Interval)
	if p.config.MaxAttempts > 0 {
		backoff = retry.WithMaxRetries(uint64(p.config.MaxAttempts-1), backoff)
	}
	if p.config.MaxElapsed > 0 {
		backoff = retry.WithMaxDuration(p.config.MaxElapsed, backoff)
	}

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if err := p.probe(ctx); err != nil {
			p.logger.Warn("Database not ready", "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w after %d attempts in %s: %v",
			ErrConnectionUnavailable, attempts, time.Since(start).Round(time.Millisecond), err)
	}

	p.logger.Info("Database is ready", "attempts", attempts, "elapsed", time.Since(start).Round(time.Millisecond).String())
	return nil
}
