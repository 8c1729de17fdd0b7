// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SkillBridge Contributors

// Package auth implements the credential and session lifecycle for the
// SkillBridge marketplace: account registration with uniquely-keyed
// credentials, login, logout, and session validation.
//
// All durable state lives in the repositories; the service itself is
// stateless per request. Register's writes (account, profile, initial
// session) execute inside a single transaction supplied by a Transactor.
package auth
