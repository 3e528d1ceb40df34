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
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestWaitReadySucceedsAfterFailures(t *testing.T) {
	var calls int
	probe := func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("connection refused")
		}
		return nil
	}

	p := NewProber(ProberConfig{
		Interval:    time.Millisecond,
		MaxAttempts: 10,
	}, probe, nil)

	if err := p.WaitReady(context.Background()); err != nil {
		t.Fatalf("WaitReady error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("probe ran %d times, want 3", calls)
	}
}

func TestWaitReadyExhaustsAttempts(t *testing.T) {
	var calls int
	probe := func(ctx context.Context) error {
		calls++
		return fmt.Errorf("connection refused")
	}

	p := NewProber(ProberConfig{
		Interval:    time.Millisecond,
		MaxAttempts: 4,
	}, probe, nil)

	err := p.WaitReady(context.Background())
	if err == nil {
		t.Fatal("WaitReady should fail when the database never answers")
	}
	if !errors.Is(err, ErrConnectionUnavailable) {
		t.Fatalf("error %v does not wrap ErrConnectionUnavailable", err)
	}
	if calls != 4 {
		t.Fatalf("probe ran %d times, want 4", calls)
	}
}

func TestWaitReadyExhaustsElapsedBudget(t *testing.T) {
	probe := func(ctx context.Context) error {
		return fmt.Errorf("connection refused")
	}

	p := NewProber(ProberConfig{
		Interval:   5 * time.Millisecond,
		MaxElapsed: 30 * time.Millisecond,
	}, probe, nil)

	start := time.Now()
	err := p.WaitReady(context.Background())
	if err == nil {
		t.Fatal("WaitReady should fail when the elapsed budget runs out")
	}
	if !errors.Is(err, ErrConnectionUnavailable) {
		t.Fatalf("error %v does not wrap ErrConnectionUnavailable", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("WaitReady ran for %s, the elapsed budget did not stop it", elapsed)
	}
}

func TestWaitReadyContextCancel(t *testing.T) {
	probe := func(ctx context.Context) error {
		return fmt.Errorf("connection refused")
	}

	p := NewProber(ProberConfig{Interval: 10 * time.Millisecond}, probe, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(25 * time.Millisecond)
		cancel()
	}()

	err := p.WaitReady(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error is %v, want context.Canceled", err)
	}
}

func TestWaitReadyNoProbe(t *testing.T) {
	p := NewProber(ProberConfig{Interval: time.Millisecond}, nil, nil)
	if err := p.WaitReady(context.Background()); err == nil {
		t.Fatal("WaitReady with no probe should fail")
	}
}

func TestWaitReadyFirstTry(t *testing.T) {
	var calls int
	probe := func(ctx context.Context) error {
		calls++
		return nil
	}

	p := NewProber(ProberConfig{Interval: time.Second, MaxAttempts: 1}, probe, nil)
	if err := p.WaitReady(context.Background()); err != nil {
		t.Fatalf("WaitReady error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("probe ran %d times, want 1", calls)
	}
}
