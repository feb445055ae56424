// Package source imports dashboard state exported from the browser version
// of the dashboard (a localStorage dump).
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/theirongolddev/bunkerdash/internal/metrics"
	"github.com/theirongolddev/bunkerdash/internal/model"
	"github.com/theirongolddev/bunkerdash/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNoState is returned when a dump holds no dashboard document.
var ErrNoState = errors.New("no dashboard state in dump")

var patStateKey = []byte(`"` + store.StateKey + `"`)

// ParseFile reads and parses the dump at path.
func ParseFile(path string) (ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("reading dump: %w", err)
	}
	return Parse(data)
}

// Parse accepts either the bare state document or a localStorage export in
// which the document sits under the storage key, as an object or as a JSON
// string.
func Parse(data []byte) (ParseResult, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return ParseResult{}, fmt.Errorf("%w: not a JSON object", ErrNoState)
	}

	var res ParseResult
	doc := data
	if bytes.Contains(data, patStateKey) {
		inner := jsoniter.Get(data, store.StateKey)
		switch inner.ValueType() {
		case jsoniter.StringValue:
			doc = []byte(inner.ToString())
			res.Wrapped = true
		case jsoniter.ObjectValue:
			doc = []byte(inner.ToString())
			res.Wrapped = true
		}
	}

	if !looksLikeState(doc) {
		return ParseResult{}, ErrNoState
	}

	var state model.State
	if err := json.Unmarshal(doc, &state); err != nil {
		return ParseResult{}, fmt.Errorf("decoding dump: %w", err)
	}
	res.Unresolved = state.Normalize()
	res.Warnings = check(&state)
	res.State = &state
	return res, nil
}

// looksLikeState checks for at least one top-level dashboard section.
func looksLikeState(doc []byte) bool {
	for _, key := range []string{"kpis", "mrrHistory", "clients", "clientActivity", "affiliates"} {
		if jsoniter.Get(doc, key).ValueType() != jsoniter.InvalidValue {
			return true
		}
	}
	return false
}

func check(s *model.State) []string {
	var warnings []string
	for i, p := range s.MrrHistory {
		if _, _, err := metrics.ParseMonth(p.Month); err != nil {
			warnings = append(warnings, fmt.Sprintf("mrrHistory[%d]: %v", i, err))
		}
	}
	for i, a := range s.ClientActivity {
		if _, _, err := metrics.ParseMonth(a.Month); err != nil {
			warnings = append(warnings, fmt.Sprintf("clientActivity[%d]: %v", i, err))
		}
	}
	seen := make(map[int64]bool, len(s.Clients))
	for _, c := range s.Clients {
		if seen[c.ID] {
			warnings = append(warnings, fmt.Sprintf("clients: duplicate id %d", c.ID))
		}
		seen[c.ID] = true
	}
	return warnings
}
