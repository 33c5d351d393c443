// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/domreg/domreg.go/core"
	"github.com/domreg/domreg.go/hosting/github"
)

func _register(ctx context.Context) error {
	switch {
	case *subdomain == "":
		return fmt.Errorf("register: require -subdomain")
	case *file == "":
		return fmt.Errorf("register: require -file")
	case *token == "":
		return fmt.Errorf("register: require -token (registration must act as the submitting user)")
	}

	b, err := os.ReadFile(*file)
	if err != nil {
		return err
	}

	data, err := UnmarshalJSON(b, &core.DomainData{})
	if err != nil {
		return fmt.Errorf("parsing %s: %v", *file, err)
	}

	hosting, err := buildHosting(true)
	if err != nil {
		return err
	}

	checker := core.NewChecker(hosting, registryConfig())
	if available, err := checker.CheckAvailability(ctx, *subdomain); err != nil {
		return err
	} else if !available {
		fmt.Println("Subdomain already registered; submitting as an update.")
	}

	engine := core.NewEngine(hosting, registryConfig())
	engine.Policy = policy()
	engine.Progress = func(step core.ProgressStep) {
		fmt.Printf("[%s] %s\n", step.Status, step.Message)
	}

	var shot *core.Screenshot
	if *screenshot != "" {
		shotData, err := os.ReadFile(*screenshot)
		if err != nil {
			return err
		}
		shot = &core.Screenshot{Name: filepath.Base(*screenshot), Data: shotData}

		if gh, ok := hosting.(*github.Hosting); ok {
			engine.Artifacts = github.NewScreenshots(gh, *parentDomain)
		}
	}

	result, err := engine.RegisterDomain(ctx, *subdomain, data, shot)
	if err != nil {
		return err
	}

	fmt.Println("Pull request:", result.URL)
	return nil
}
