// Package extract turns a ZAP scan report into normalized vulnerability records.
//
// Two modes are supported:
//
//  1. Structural: deterministic parsing of the report's HTML tables
//  2. Assisted: the raw report is handed to a language model that replies with a JSON array
//
// Both modes return only High and Medium findings, in the order they appear in
// the report. A malformed row or an unusable model reply degrades to fewer (or zero)
// records; only empty input is an error.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zapissues/zapissues/internal/ai"
	"github.com/zapissues/zapissues/internal/types"
)

// Mode selects how records are extracted
type Mode string

const (
	ModeStructural Mode = "structural"
	ModeAssisted   Mode = "assisted"
)

// IsValid checks if the mode value is valid
func (m Mode) IsValid() bool {
	switch m {
	case ModeStructural, ModeAssisted:
		return true
	}
	return false
}

// ParseMode parses a mode name case-insensitively
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("invalid extraction mode: %q (want structural or assisted)", s)
	}
	return m, nil
}

// ErrEmptyReport is returned when the report has no content to extract from
var ErrEmptyReport = errors.New("report is empty")

// Extractor produces the actionable records of one report
type Extractor interface {
	Extract(ctx context.Context, report []byte) ([]types.VulnerabilityRecord, error)
}

// New returns the extractor for mode. The completer is only used by ModeAssisted
// and may be nil otherwise.
func New(mode Mode, completer ai.Completer) (Extractor, error) {
	switch mode {
	case ModeStructural:
		return NewStructuralExtractor(), nil
	case ModeAssisted:
		return NewAssistedExtractor(completer), nil
	default:
		return nil, fmt.Errorf("invalid extraction mode: %q", mode)
	}
}

func isBlank(report []byte) bool {
	return len(strings.TrimSpace(string(report))) == 0
}
