// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

//go:build integration

// Package testinfra provides container-backed infrastructure for integration
// tests. Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/recommend/storage/...
//
// Tests call SkipIfNoDocker first so the suite degrades to a skip on hosts
// without a Docker daemon.
package testinfra
