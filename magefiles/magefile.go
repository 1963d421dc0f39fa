//go:build mage

// Package main contains Mage build targets for convert-json-to-parquet.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binDir = "bin"

// binaries maps output names to their main packages.
var binaries = map[string]string{
	"convert-json-to-parquet":        "./cmd/convert-json-to-parquet",
	"convert-json-to-parquet-lambda": "./cmd/convert-json-to-parquet-lambda",
}

// Build compiles the CLI and Lambda binaries into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	ldflags := "-X main.version=" + version()
	for name, pkg := range binaries {
		out := filepath.Join(binDir, name)
		if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, pkg); err != nil {
			return fmt.Errorf("go build %s: %w", pkg, err)
		}
		fmt.Printf("Built %s\n", out)
	}
	return nil
}

// Lambda cross-compiles the Lambda handler as bootstrap for the provided.al2023 runtime.
func Lambda() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	env := map[string]string{"GOOS": "linux", "GOARCH": "amd64", "CGO_ENABLED": "1"}
	out := filepath.Join(binDir, "bootstrap")
	return sh.RunWithV(env, "go", "build", "-tags", "lambda.norpc", "-o", out, binaries["convert-json-to-parquet-lambda"])
}

// Vet runs go vet over the module.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test runs the unit tests.
func Test() error {
	mg.Deps(Vet)
	return sh.RunV("go", "test", "./...")
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}

func version() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		return "dev"
	}
	return v
}
