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
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kraklabs/agsearch/pkg/citation"
)

// OpenAIBackend implements API over the OpenAI Assistants and vector-store
// endpoints via github.com/sashabaranov/go-openai.
type OpenAIBackend struct {
	client *openai.Client
}

var _ API = (*OpenAIBackend)(nil)

// NewOpenAIBackend builds a backend for the given API key. baseURL
// overrides the service endpoint when non-empty (proxies, test servers).
func NewOpenAIBackend(apiKey, baseURL string) *OpenAIBackend {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIBackend{client: openai.NewClientWithConfig(cfg)}
}

// UploadFile uploads a document with the assistants purpose.
func (b *OpenAIBackend) UploadFile(ctx context.Context, name string, data []byte) (string, error) {
	file, err := b.client.CreateFileBytes(ctx, openai.FileBytesRequest{
		Name:    name,
		Bytes:   data,
		Purpose: openai.PurposeAssistants,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	uploadsTotal.Inc()
	uploadBytesTotal.Add(float64(len(data)))
	return file.ID, nil
}

// DeleteFile removes an uploaded file object.
func (b *OpenAIBackend) DeleteFile(ctx context.Context, fileID string) error {
	if err := b.client.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("delete file %s: %w", fileID, err)
	}
	deletesTotal.Inc()
	return nil
}

// CreateVectorStore creates a vector store indexing the given file IDs.
func (b *OpenAIBackend) CreateVectorStore(ctx context.Context, name string, fileIDs []string) (string, error) {
	vs, err := b.client.CreateVectorStore(ctx, openai.VectorStoreRequest{
		Name:    name,
		FileIDs: fileIDs,
	})
	if err != nil {
		return "", fmt.Errorf("create vector store: %w", err)
	}
	return vs.ID, nil
}

// RetrieveVectorStore fetches store status and file counts.
func (b *OpenAIBackend) RetrieveVectorStore(ctx context.Context, id string) (VectorStoreInfo, error) {
	vs, err := b.client.RetrieveVectorStore(ctx, id)
	if err != nil {
		return VectorStoreInfo{}, fmt.Errorf("retrieve vector store %s: %w", id, err)
	}
	return VectorStoreInfo{
		ID:         vs.ID,
		Status:     vs.Status,
		UsageBytes: int64(vs.UsageBytes),
		FileCounts: FileCounts{
			Completed:  vs.FileCounts.Completed,
			Failed:     vs.FileCounts.Failed,
			InProgress: vs.FileCounts.InProgress,
			Total:      vs.FileCounts.Total,
		},
	}, nil
}

// AddVectorStoreFile attaches an uploaded file to a vector store.
func (b *OpenAIBackend) AddVectorStoreFile(ctx context.Context, vectorStoreID, fileID string) error {
	_, err := b.client.CreateVectorStoreFile(ctx, vectorStoreID, openai.VectorStoreFileRequest{
		FileID: fileID,
	})
	if err != nil {
		return fmt.Errorf("attach file %s: %w", fileID, err)
	}
	return nil
}

// RemoveVectorStoreFile detaches a file from a vector store.
func (b *OpenAIBackend) RemoveVectorStoreFile(ctx context.Context, vectorStoreID, fileID string) error {
	if err := b.client.DeleteVectorStoreFile(ctx, vectorStoreID, fileID); err != nil {
		return fmt.Errorf("detach file %s: %w", fileID, err)
	}
	return nil
}

// DeleteVectorStore removes the vector store.
func (b *OpenAIBackend) DeleteVectorStore(ctx context.Context, id string) error {
	if _, err := b.client.DeleteVectorStore(ctx, id); err != nil {
		return fmt.Errorf("delete vector store %s: %w", id, err)
	}
	deletesTotal.Inc()
	return nil
}

// CreateAssistant creates a file-search assistant scoped to one vector store.
func (b *OpenAIBackend) CreateAssistant(ctx context.Context, spec AssistantSpec) (string, error) {
	assistant, err := b.client.CreateAssistant(ctx, openai.AssistantRequest{
		Model:        spec.Model,
		Name:         &spec.Name,
		Instructions: &spec.Instructions,
		Tools: []openai.AssistantTool{
			{Type: openai.AssistantToolTypeFileSearch},
		},
		ToolResources: &openai.AssistantToolResource{
			FileSearch: &openai.AssistantToolFileSearch{
				VectorStoreIDs: []string{spec.VectorStoreID},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", err)
	}
	return assistant.ID, nil
}

// DeleteAssistant removes the assistant.
func (b *OpenAIBackend) DeleteAssistant(ctx context.Context, id string) error {
	if _, err := b.client.DeleteAssistant(ctx, id); err != nil {
		return fmt.Errorf("delete assistant %s: %w", id, err)
	}
	deletesTotal.Inc()
	return nil
}

// StartThread opens an empty conversation thread.
func (b *OpenAIBackend) StartThread(ctx context.Context) (string, error) {
	thread, err := b.client.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return thread.ID, nil
}

// AddMessage appends a user message to the thread.
func (b *OpenAIBackend) AddMessage(ctx context.Context, threadID, text string) error {
	_, err := b.client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    string(openai.ThreadMessageRoleUser),
		Content: text,
	})
	if err != nil {
		return fmt.Errorf("add message: %w", err)
	}
	return nil
}

// StartRun executes the assistant against the thread.
func (b *OpenAIBackend) StartRun(ctx context.Context, threadID, assistantID string) (string, error) {
	run, err := b.client.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: assistantID,
	})
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return run.ID, nil
}

// RunStatus fetches the current phase of a run.
func (b *OpenAIBackend) RunStatus(ctx context.Context, threadID, runID string) (RunPhase, error) {
	run, err := b.client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return "", fmt.Errorf("retrieve run %s: %w", runID, err)
	}
	return RunPhase(run.Status), nil
}

// LatestAnswer returns the newest message on the thread with its citation
// annotations decoded.
func (b *OpenAIBackend) LatestAnswer(ctx context.Context, threadID string) (Answer, error) {
	limit := 1
	order := "desc"
	list, err := b.client.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return Answer{}, fmt.Errorf("list messages: %w", err)
	}
	if len(list.Messages) == 0 {
		return Answer{}, fmt.Errorf("thread %s has no messages", threadID)
	}

	for _, content := range list.Messages[0].Content {
		if content.Text == nil {
			continue
		}
		return Answer{
			Text:        content.Text.Value,
			Annotations: decodeAnnotations(content.Text.Annotations),
		}, nil
	}
	return Answer{}, fmt.Errorf("thread %s: newest message has no text content", threadID)
}

// wireAnnotation mirrors the annotation payloads the service emits. The
// shape drifted across API revisions, so the file citation may appear
// nested or inlined at the top level.
type wireAnnotation struct {
	Type         string            `json:"type"`
	Text         string            `json:"text"`
	StartIndex   *int              `json:"start_index"`
	EndIndex     *int              `json:"end_index"`
	FileCitation *wireFileCitation `json:"file_citation"`

	// Inlined fallbacks for older payloads.
	FileID   string `json:"file_id"`
	Quote    string `json:"quote"`
	Filename string `json:"filename"`
}

type wireFileCitation struct {
	FileID   string `json:"file_id"`
	Quote    string `json:"quote"`
	Filename string `json:"filename"`
}

// decodeAnnotations converts the SDK's untyped annotation values into
// citation.Annotation, skipping anything that is not a file citation.
func decodeAnnotations(raw []any) []citation.Annotation {
	var out []citation.Annotation
	for _, item := range raw {
		data, err := json.Marshal(item)
		if err != nil {
			continue
		}
		var wa wireAnnotation
		if err := json.Unmarshal(data, &wa); err != nil {
			continue
		}

		fc := wa.FileCitation
		if fc == nil {
			if wa.Type != "file_citation" {
				continue
			}
			fc = &wireFileCitation{FileID: wa.FileID, Quote: wa.Quote, Filename: wa.Filename}
		}

		out = append(out, citation.Annotation{
			FileID:     fc.FileID,
			Filename:   fc.Filename,
			Quote:      fc.Quote,
			Text:       wa.Text,
			StartIndex: wa.StartIndex,
			EndIndex:   wa.EndIndex,
		})
	}
	return out
}
