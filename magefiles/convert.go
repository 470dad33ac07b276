//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the CLI and converts the default spreadsheet export into output/.
func Convert() error {
	mg.Deps(Build)
	fmt.Println("[convert] Writing one JSON document per row into output/.")
	return sh.RunV(filepath.Join(binDir, binName))
}

// Catalog indexes output/ into the local SQLite catalog.
func Catalog() error {
	mg.Deps(Convert)
	return sh.RunV(filepath.Join(binDir, binName), "catalog", "store")
}
