//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs vet and the unit tests.
func (Test) All() error {
	if _, err := executeCmd("go", withArgs("vet", "./...")); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the unit tests with the race detector.
func (Test) Race() error {
	mg.Deps(Test.All)
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}
