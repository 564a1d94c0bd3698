package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMain(m *testing.M) {
	tempHome, err := os.MkdirTemp("", "pdparty-cmd-test-")
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = os.RemoveAll(tempHome)
	}()

	setEnvOrPanic := func(key, value string) {
		if err := os.Setenv(key, value); err != nil {
			panic(err)
		}
	}

	setEnvOrPanic("HOME", tempHome)
	setEnvOrPanic("PDPARTY_HOME", filepath.Join(tempHome, ".pdparty"))
	setEnvOrPanic("PDPARTY_PATHS_RESOURCES", filepath.Join(tempHome, "resources"))
	setEnvOrPanic("PDPARTY_PATHS_USER", filepath.Join(tempHome, "Documents", "PdParty"))

	code := m.Run()
	_ = os.RemoveAll(tempHome)
	os.Exit(code)
}
