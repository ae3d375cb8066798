//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target - run the tests
var Default = Test

const binDir = "bin"

// Build builds the testgen CLI and the HTTP server into bin/
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	for _, name := range []string{"testgen", "server"} {
		fmt.Printf("building %s\n", name)
		if err := sh.RunV("go", "build", "-o", binDir+"/"+name, "./cmd/"+name); err != nil {
			return fmt.Errorf("build %s: %w", name, err)
		}
	}
	return nil
}

// Test runs the unit tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// QA runs vet and the tests
func QA() {
	mg.SerialDeps(Vet, Test)
}

// Serve builds and starts the HTTP server
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binDir + "/server")
}

// Clean removes build artifacts
func Clean() error {
	return sh.Rm(binDir)
}
