//go:build tools

package tools

// Tool dependencies pinned in go.mod. The goose CLI applies the same
// migrations as `ownerctl migrate` when run against a bare database.

import (
	_ "github.com/pressly/goose/v3/cmd/goose"
)
