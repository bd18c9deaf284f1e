// Copyright 2025 KrakLabs
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters exposed on the optional --metrics-addr endpoint during long
// init/sync operations.
var (
	uploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agsearch",
		Name:      "uploads_total",
		Help:      "Documents uploaded to the remote service.",
	})
	uploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agsearch",
		Name:      "upload_bytes_total",
		Help:      "Total bytes uploaded to the remote service.",
	})
	deletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agsearch",
		Name:      "remote_deletes_total",
		Help:      "Remote resources deleted (files, stores, assistants).",
	})
	pollRoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "agsearch",
		Name:      "poll_rounds_total",
		Help:      "Status polling rounds against the remote service.",
	})
)
