// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

// Package errutil provides helpers for logging and asserting coded errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs an error with structured context. For oops errors the code
// and context map are attached as attributes; standard errors log the
// error string only.
func LogError(logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
	} else {
		logger.Error(msg, "error", err)
	}
}

// Code extracts the oops error code from err, or "" if err is not an oops
// error or carries no code.
func Code(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok {
			return code
		}
	}
	return ""
}

// ContextValue extracts a single context value from an oops error. The
// second return is false when err is not an oops error or the key is absent.
func ContextValue(err error, key string) (any, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil, false
	}
	v, present := oopsErr.Context()[key]
	return v, present
}
