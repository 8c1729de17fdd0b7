// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillbridge/authd/internal/config"
)

// ServiceStatus holds the probe results for a running authd instance.
type ServiceStatus struct {
	Addr      string `json:"addr"`
	Reachable bool   `json:"reachable"`
	Live      bool   `json:"live"`
	Ready     bool   `json:"ready"`
	Error     string `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// newStatusCmd creates the status subcommand.
func newStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show health of a running authd instance",
		Long:  `Probe the liveness and readiness endpoints of a running authd instance.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().String("metrics-addr", config.Default().MetricsAddr, "metrics/health HTTP address to probe")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	appCfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	status := probeService(appCfg.MetricsAddr)

	if cfg.jsonOutput {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(formatStatusTable(status))
	return nil
}

// probeService hits the health endpoints of the observability server.
func probeService(metricsAddr string) ServiceStatus {
	status := ServiceStatus{Addr: metricsAddr}

	client := &http.Client{Timeout: 2 * time.Second}

	live, err := probeEndpoint(client, metricsAddr, "/healthz/liveness")
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Reachable = true
	status.Live = live

	ready, err := probeEndpoint(client, metricsAddr, "/healthz/readiness")
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Ready = ready

	return status
}

func probeEndpoint(client *http.Client, addr, path string) (bool, error) {
	resp, err := client.Get("http://" + addr + path)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK, nil
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(status ServiceStatus) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "ADDR\tREACHABLE\tLIVE\tREADY")
	if status.Reachable {
		_, _ = fmt.Fprintf(w, "%s\tyes\t%s\t%s\n", status.Addr, yesNo(status.Live), yesNo(status.Ready))
	} else {
		reason := "unreachable"
		if status.Error != "" {
			reason = status.Error
		}
		_, _ = fmt.Fprintf(w, "%s\tno\t-\t-\t(%s)\n", status.Addr, reason)
	}

	_ = w.Flush()
	return sb.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
