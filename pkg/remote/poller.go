// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"context"
	"fmt"
	"time"
)

// Default polling schedule. The interval doubles after every round until
// it reaches the cap.
const (
	DefaultPollInterval    = 1 * time.Second
	MaxPollInterval        = 10 * time.Second
	DefaultIndexingTimeout = 600 * time.Second
)

// PollConfig controls the backoff schedule of the pollers.
type PollConfig struct {
	Initial time.Duration
	Max     time.Duration
	Timeout time.Duration

	// Sleep is swappable for tests; nil means time.Sleep.
	Sleep func(time.Duration)
}

// DefaultPollConfig returns the production polling schedule with the given
// timeout (DefaultIndexingTimeout when zero).
func DefaultPollConfig(timeout time.Duration) PollConfig {
	if timeout <= 0 {
		timeout = DefaultIndexingTimeout
	}
	return PollConfig{
		Initial: DefaultPollInterval,
		Max:     MaxPollInterval,
		Timeout: timeout,
	}
}

func (c PollConfig) sleep(d time.Duration) {
	if c.Sleep != nil {
		c.Sleep(d)
		return
	}
	time.Sleep(d)
}

// WaitForIndexing polls the vector store until no file is in progress.
//
// report, when non-nil, is called with the counts observed on every round
// so callers can print progress. Returns the final counts, or an error when
// the timeout elapses first or the context is cancelled. Files that failed
// indexing do not fail the wait; callers decide how to present them.
func WaitForIndexing(ctx context.Context, api API, vectorStoreID string, cfg PollConfig, report func(FileCounts)) (FileCounts, error) {
	interval := cfg.Initial
	var elapsed time.Duration

	for {
		if err := ctx.Err(); err != nil {
			return FileCounts{}, err
		}

		info, err := api.RetrieveVectorStore(ctx, vectorStoreID)
		if err != nil {
			return FileCounts{}, err
		}
		pollRoundsTotal.Inc()

		if report != nil {
			report(info.FileCounts)
		}
		if info.FileCounts.InProgress == 0 {
			return info.FileCounts, nil
		}

		if elapsed >= cfg.Timeout {
			return info.FileCounts, fmt.Errorf("indexing timed out after %s", elapsed)
		}

		cfg.sleep(interval)
		elapsed += interval
		interval *= 2
		if interval > cfg.Max {
			interval = cfg.Max
		}
	}
}

// WaitForRun polls a run until it reaches a terminal phase.
//
// Returns the terminal phase; a non-completed terminal phase is reported
// as an error so callers can surface the failure directly.
func WaitForRun(ctx context.Context, api API, threadID, runID string, cfg PollConfig) (RunPhase, error) {
	interval := cfg.Initial
	var elapsed time.Duration

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		phase, err := api.RunStatus(ctx, threadID, runID)
		if err != nil {
			return "", err
		}
		pollRoundsTotal.Inc()

		if phase.Terminal() {
			if phase != RunCompleted {
				return phase, fmt.Errorf("run ended with status %s", phase)
			}
			return phase, nil
		}

		if elapsed >= cfg.Timeout {
			return phase, fmt.Errorf("run timed out after %s", elapsed)
		}

		cfg.sleep(interval)
		elapsed += interval
		interval *= 2
		if interval > cfg.Max {
			interval = cfg.Max
		}
	}
}
