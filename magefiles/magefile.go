//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the refcache project using Mage.
//
// Usage:
//
//	mage build             Compile the refcache binary to bin/
//	mage test:all          Run all tests (unit + integration)
//	mage test:unit         Run only unit tests
//	mage test:integration  Run only integration tests (builds first)
//	mage test:cover        Run unit tests with a coverage profile
//	mage lint              Run golangci-lint
//	mage vet               Run go vet
//	mage clean             Remove build artifacts
//	mage install           Install refcache to GOPATH/bin
//	mage stats             Print Go LOC and documentation word counts
package main

// Default is the target run by a bare `mage`.
var Default = Build
