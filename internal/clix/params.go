// Package clix holds flag helpers shared by the CLI commands.
package clix

import (
	"fmt"

	"github.com/spf13/pflag"
)

const (
	DefaultLimit = 20
	MaxLimit     = 500 // one page of usage logs
)

// Page selects a window of a listing.
type Page struct {
	Limit  int
	Offset int
}

// AddPageFlags registers --limit/-l and --offset/-o on flags.
func AddPageFlags(flags *pflag.FlagSet, defaultLimit int) {
	flags.IntP("limit", "l", defaultLimit, fmt.Sprintf("Number of rows to display (max %d)", MaxLimit))
	flags.IntP("offset", "o", 0, "Number of rows to skip")
}

// ParsePage reads the flags added by AddPageFlags. A missing or non-positive
// limit means DefaultLimit and larger limits are capped at MaxLimit; a
// negative offset is an error.
func ParsePage(flags *pflag.FlagSet) (Page, error) {
	limit, _ := flags.GetInt("limit")
	offset, _ := flags.GetInt("offset")
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	if offset < 0 {
		return Page{}, fmt.Errorf("offset must not be negative, got %d", offset)
	}
	return Page{Limit: limit, Offset: offset}, nil
}
