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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kraklabs/agsearch/internal/errors"
	"github.com/kraklabs/agsearch/pkg/ignore"
	"github.com/kraklabs/agsearch/pkg/remote"
)

// uploadResult collects the identifiers produced by an upload pass.
type uploadResult struct {
	FileIDs   []string
	FileNames []string
	FileIDMap map[string]string
}

// uploadDocuments uploads every document and, when vectorStoreID is
// non-empty, attaches each file to that store (the sync path; init passes
// all IDs to CreateVectorStore instead).
func uploadDocuments(ctx context.Context, api remote.API, docs []ignore.Document, vectorStoreID string, progressCfg ProgressConfig, logger *slog.Logger) (*uploadResult, error) {
	result := &uploadResult{
		FileIDMap: make(map[string]string, len(docs)),
	}

	bar := NewProgressBar(progressCfg, int64(len(docs)), "Uploading documents")
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(doc.AbsPath) //nolint:gosec // G304: path comes from the scanned folder
		if err != nil {
			return nil, errors.NewPermissionError(
				"Cannot read document",
				fmt.Sprintf("Failed to read %s", doc.AbsPath),
				"Check file permissions and re-run",
				err,
			)
		}

		logger.Debug("upload.file", "path", doc.RelPath, "bytes", len(data))
		fileID, err := api.UploadFile(ctx, doc.RelPath, data)
		if err != nil {
			return nil, errors.NewAPIError(
				"Upload failed",
				fmt.Sprintf("The service rejected %s", doc.RelPath),
				"Check your API key, network connection, and service status, then re-run",
				err,
			)
		}

		if vectorStoreID != "" {
			if err := api.AddVectorStoreFile(ctx, vectorStoreID, fileID); err != nil {
				return nil, errors.NewAPIError(
					"Cannot attach file to vector store",
					fmt.Sprintf("Uploaded %s but failed to attach it for indexing", doc.RelPath),
					"Re-run 'agsearch sync' to retry from a consistent state",
					err,
				)
			}
		}

		result.FileIDs = append(result.FileIDs, fileID)
		result.FileNames = append(result.FileNames, doc.RelPath)
		result.FileIDMap[doc.RelPath] = fileID

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	return result, nil
}

// waitForIndexing polls the vector store until indexing settles, printing
// one status line per round unless suppressed.
func waitForIndexing(ctx context.Context, api remote.API, vectorStoreID string, timeoutSeconds int, globals GlobalFlags) (remote.FileCounts, error) {
	cfg := remote.DefaultPollConfig(time.Duration(timeoutSeconds) * time.Second)

	report := func(counts remote.FileCounts) {
		if globals.Quiet {
			return
		}
		fmt.Printf("Indexing status: %d completed, %d failed, %d in progress\n",
			counts.Completed, counts.Failed, counts.InProgress)
	}

	counts, err := remote.WaitForIndexing(ctx, api, vectorStoreID, cfg, report)
	if err != nil {
		return counts, errors.NewAPIError(
			"Indexing did not complete",
			"The vector store did not finish indexing the uploaded files",
			fmt.Sprintf("Increase --index-timeout (current: %ds) or check the service status", timeoutSeconds),
			err,
		)
	}
	return counts, nil
}

// newCommandLogger builds the slog logger used by the long-running
// commands. Debug mode lowers the level; quiet mode raises it.
func newCommandLogger(debug bool, globals GlobalFlags) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	} else if globals.Verbose >= 1 {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
