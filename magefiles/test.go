//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets.
type Test mg.Namespace

const (
	integrationPkg = "./tests/..."
	coverProfile   = "coverage.out"
)

// All runs unit and integration tests.
func (Test) All() error {
	mg.SerialDeps(Test.Unit, Test.Integration)
	return nil
}

// Unit runs every package except tests/ with the race detector.
func (Test) Unit() error {
	pkgs, err := unitPackages()
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	args := append([]string{"test", "-race"}, pkgs...)
	return sh.RunV(binGo, args...)
}

// Integration builds the binary, then runs the CLI tests.
func (Test) Integration() error {
	mg.Deps(Build)
	return sh.RunV(binGo, "test", integrationPkg)
}

// Cover runs unit tests with a coverage profile and prints the summary.
func (Test) Cover() error {
	pkgs, err := unitPackages()
	if err != nil {
		return err
	}
	args := append([]string{"test", "-coverprofile=" + coverProfile}, pkgs...)
	if err := sh.RunV(binGo, args...); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverProfile)
}

// unitPackages lists module packages outside tests/ and magefiles/.
func unitPackages() ([]string, error) {
	out, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return nil, err
	}
	var pkgs []string
	for _, pkg := range strings.Split(out, "\n") {
		if pkg == "" || strings.HasPrefix(pkg, modulePath+"/tests") {
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs, nil
}
