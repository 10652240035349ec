//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the muexport binary into bin/.
func (Build) Cli() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/muexport", "./cmd/muexport"), withStream())
	return err
}

// Installs muexport into GOBIN.
func (Build) Install() error {
	_, err := executeCmd("go", withArgs("install", "./cmd/muexport"), withStream())
	return err
}
