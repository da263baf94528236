// Copyright 2025 go-ufunc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the command-line flags for runs driven by a YAML
// file. Empty fields fall back to the flag defaults, and a flag given
// explicitly on the command line wins over the file.
type Config struct {
	Registry     string `yaml:"registry"`
	Docs         string `yaml:"docs"`
	Output       string `yaml:"output"`
	OutputPrefix string `yaml:"output_prefix"`
	Package      string `yaml:"pkg"`
}

func loadConfig(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}
