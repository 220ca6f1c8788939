//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const catalogYAML = `categories:
  - id: womens
    name: Womens
    slug: womens
  - id: mens
    name: Mens
    slug: mens
products:
  - id: P1
    name: Ankle boot
    categories: [womens]
  - id: P2
    name: Brogue
    categories: [mens]
  - id: P3
    name: Chelsea boot
    categories: [womens, mens]
`

const configTOML = `version = 1

[field]
mode = %q
max_items = 2
title = "Featured products"

[provider]
driver = "memory"
dsn = "catalog.yaml"

[store]
path = "fields.db"
key = "featured"

[log]
file = "fieldpicker.log"
level = "debug"
`

// CreateTestWorkspace writes a config and a memory catalog into a fresh
// directory for a field of the given mode
func (tf *TUITestFramework) CreateTestWorkspace(mode string) (string, error) {
	dir, err := os.MkdirTemp("", "fieldpicker-e2e-*")
	if err != nil {
		return "", err
	}
	tf.workspace = dir

	if err := os.WriteFile(filepath.Join(dir, "catalog.yaml"), []byte(catalogYAML), 0o644); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, ".fieldpicker.toml"), []byte(fmt.Sprintf(configTOML, mode)), 0o644); err != nil {
		return "", err
	}
	return dir, nil
}

// Run executes a non-interactive subcommand in the workspace
func (tf *TUITestFramework) Run(args ...string) (string, error) {
	tf.t.Helper()
	cmd := exec.Command(binPath, args...)
	cmd.Dir = tf.workspace
	cmd.Env = append(os.Environ(), "HOME="+tf.workspace)
	out, err := cmd.CombinedOutput()
	return string(out), err
}
