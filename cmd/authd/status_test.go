// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthHandler(ready bool) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/healthz/readiness", func(w http.ResponseWriter, _ *http.Request) {
		if ready {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	return mux
}

func TestProbeService(t *testing.T) {
	t.Run("live and ready", func(t *testing.T) {
		srv := httptest.NewServer(healthHandler(true))
		defer srv.Close()

		addr := strings.TrimPrefix(srv.URL, "http://")
		status := probeService(addr)

		assert.True(t, status.Reachable)
		assert.True(t, status.Live)
		assert.True(t, status.Ready)
		assert.Empty(t, status.Error)
	})

	t.Run("live but not ready", func(t *testing.T) {
		srv := httptest.NewServer(healthHandler(false))
		defer srv.Close()

		addr := strings.TrimPrefix(srv.URL, "http://")
		status := probeService(addr)

		assert.True(t, status.Reachable)
		assert.True(t, status.Live)
		assert.False(t, status.Ready)
	})

	t.Run("unreachable", func(t *testing.T) {
		status := probeService("127.0.0.1:1")

		assert.False(t, status.Reachable)
		assert.NotEmpty(t, status.Error)
	})
}

func TestFormatStatusTable(t *testing.T) {
	t.Run("running instance", func(t *testing.T) {
		out := formatStatusTable(ServiceStatus{
			Addr:      "127.0.0.1:9100",
			Reachable: true,
			Live:      true,
			Ready:     false,
		})

		require.Contains(t, out, "ADDR")
		assert.Contains(t, out, "127.0.0.1:9100")
		assert.Contains(t, out, "yes")
		assert.Contains(t, out, "no")
	})

	t.Run("unreachable instance", func(t *testing.T) {
		out := formatStatusTable(ServiceStatus{
			Addr:  "127.0.0.1:9100",
			Error: "connection refused",
		})

		assert.Contains(t, out, "connection refused")
	})
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))
}
