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

// Package remote talks to the hosted assistant and vector-store service.
//
// The API interface covers exactly the operations the CLI needs; the
// production implementation (OpenAIBackend) wraps the OpenAI SDK and keeps
// SDK types from leaking into the rest of the program. The poller in this
// package waits for remote indexing and run completion with exponential
// backoff.
package remote

import (
	"context"

	"github.com/kraklabs/agsearch/pkg/citation"
)

// FileCounts reports the indexing progress of a vector store.
type FileCounts struct {
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	InProgress int `json:"in_progress"`
	Total      int `json:"total"`
}

// VectorStoreInfo is the subset of vector-store state the CLI reports.
type VectorStoreInfo struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	UsageBytes int64      `json:"usage_bytes"`
	FileCounts FileCounts `json:"file_counts"`
}

// AssistantSpec describes the assistant created over a vector store.
type AssistantSpec struct {
	Name          string
	Model         string
	Instructions  string
	VectorStoreID string
}

// RunPhase is the lifecycle state of an assistant run.
type RunPhase string

const (
	RunQueued         RunPhase = "queued"
	RunInProgress     RunPhase = "in_progress"
	RunCancelling     RunPhase = "cancelling"
	RunRequiresAction RunPhase = "requires_action"
	RunCompleted      RunPhase = "completed"
	RunFailed         RunPhase = "failed"
	RunCancelled      RunPhase = "cancelled"
	RunExpired        RunPhase = "expired"
	RunIncomplete     RunPhase = "incomplete"
)

// Terminal reports whether the run has stopped executing. The assistant is
// configured without callable tools, so requires_action cannot resolve and
// counts as terminal.
func (p RunPhase) Terminal() bool {
	switch p {
	case RunQueued, RunInProgress, RunCancelling:
		return false
	}
	return true
}

// Answer is an assistant reply with its citation annotations.
type Answer struct {
	Text        string
	Annotations []citation.Annotation
}

// API is the remote service surface the CLI depends on.
//
// Implementations must be safe for sequential use from a single goroutine;
// the CLI never issues concurrent calls.
type API interface {
	// UploadFile stores a document remotely and returns its file ID.
	UploadFile(ctx context.Context, name string, data []byte) (string, error)
	// DeleteFile removes an uploaded file.
	DeleteFile(ctx context.Context, fileID string) error

	// CreateVectorStore creates a store indexing the given files.
	CreateVectorStore(ctx context.Context, name string, fileIDs []string) (string, error)
	// RetrieveVectorStore fetches current store status and counts.
	RetrieveVectorStore(ctx context.Context, id string) (VectorStoreInfo, error)
	// AddVectorStoreFile attaches an uploaded file to a store.
	AddVectorStoreFile(ctx context.Context, vectorStoreID, fileID string) error
	// RemoveVectorStoreFile detaches a file from a store.
	RemoveVectorStoreFile(ctx context.Context, vectorStoreID, fileID string) error
	// DeleteVectorStore removes the store itself.
	DeleteVectorStore(ctx context.Context, id string) error

	// CreateAssistant creates the retrieval assistant and returns its ID.
	CreateAssistant(ctx context.Context, spec AssistantSpec) (string, error)
	// DeleteAssistant removes the assistant.
	DeleteAssistant(ctx context.Context, id string) error

	// StartThread opens an empty conversation thread.
	StartThread(ctx context.Context) (string, error)
	// AddMessage appends a user message to a thread.
	AddMessage(ctx context.Context, threadID, text string) error
	// StartRun executes the assistant against a thread.
	StartRun(ctx context.Context, threadID, assistantID string) (string, error)
	// RunStatus fetches the current phase of a run.
	RunStatus(ctx context.Context, threadID, runID string) (RunPhase, error)
	// LatestAnswer returns the newest assistant message on a thread.
	LatestAnswer(ctx context.Context, threadID string) (Answer, error)
}
