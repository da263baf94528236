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

// Command ufuncgen compiles a registry of numeric kernels into
// elementwise loop functions, dispatch tables, and generic scalar
// dispatchers for a target package.
//
// Usage:
//
//	ufuncgen -registry ufuncs.txt -docs ufuncs_docs.yaml -output . -pkg special
//
// The same settings can come from a YAML file, with explicit flags
// taking precedence:
//
//	ufuncgen -config gen.yaml
//
// Or via go:generate:
//
//	//go:generate ufuncgen -registry ufuncs.txt -docs ufuncs_docs.yaml -output .
//
// Each registry line declares one dispatch group: the kernels that
// implement it, their type signatures, and where each kernel comes
// from. The generator produces:
//  1. Shared strided loop functions over raw buffers
//  2. A dispatch table per group, rows ordered by type preference
//  3. A generic scalar function per exposed group
//  4. For foreign-linked kernels, an indirection slot file and a YAML
//     manifest for the bridge provider
//
// All outputs are produced together; a validation error in any group
// means nothing is written.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

var (
	configFile   = flag.String("config", "", "YAML config supplying the other flags; explicit flags win")
	registryFile = flag.String("registry", "", "Registry file of kernel groups (required)")
	docsFile     = flag.String("docs", "", "YAML file mapping group names to documentation")
	outputDir    = flag.String("output", ".", "Output directory (default: current directory)")
	outputPrefix = flag.String("output_prefix", "ufuncs", "Output file prefix")
	packageOut   = flag.String("pkg", "special", "Output package name")
	verbose      = flag.Bool("v", false, "Report written files and generated dispatchers")
)

// fatal prints the error and exits, in red when stderr is a terminal.
func fatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		msg = "\x1b[31m" + msg + "\x1b[0m"
	}
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

func main() {
	flag.Parse()

	if *configFile != "" {
		cfg, err := loadConfig(*configFile)
		if err != nil {
			fatal("ufuncgen: %v", err)
		}
		set := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		apply := func(name string, dst *string, v string) {
			if v != "" && !set[name] {
				*dst = v
			}
		}
		apply("registry", registryFile, cfg.Registry)
		apply("docs", docsFile, cfg.Docs)
		apply("output", outputDir, cfg.Output)
		apply("output_prefix", outputPrefix, cfg.OutputPrefix)
		apply("pkg", packageOut, cfg.Package)
	}

	if *registryFile == "" {
		fmt.Fprintf(os.Stderr, "Error: -registry flag is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	gen := &Generator{
		RegistryFile: *registryFile,
		DocsFile:     *docsFile,
		OutputDir:    *outputDir,
		OutputPrefix: *outputPrefix,
		PackageOut:   *packageOut,
		Verbose:      *verbose,
	}
	if err := gen.Run(); err != nil {
		fatal("ufuncgen: %v", err)
	}
}
