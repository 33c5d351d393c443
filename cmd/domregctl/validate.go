// Copyright 2026 The domreg Authors
// This Source Code Form is subject to the terms of the Mozilla Public License, v. 2.0
// that can be found in the LICENSE file and https://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"os"

	"github.com/domreg/domreg.go/core"
)

func _validate() error {
	if *file == "" {
		return fmt.Errorf("validate: require -file")
	}

	b, err := os.ReadFile(*file)
	if err != nil {
		return err
	}

	data, err := UnmarshalJSON(b, &core.DomainData{})
	if err != nil {
		return fmt.Errorf("parsing %s: %v", *file, err)
	}

	result := policy().Validate(&data.Record, data.Proxied, data.RedirectConfig)
	fmt.Println(string(MarshalJSON(result)))

	if !result.IsValid {
		return fmt.Errorf("domain data is invalid")
	}
	return nil
}
