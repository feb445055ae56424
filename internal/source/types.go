package source

import (
	"time"

	"github.com/theirongolddev/bunkerdash/internal/model"
)

// DiscoveredFile is a candidate dump found on disk.
type DiscoveredFile struct {
	Path    string
	ModTime time.Time
	Size    int64
}

// ParseResult holds the output of parsing one dump.
type ParseResult struct {
	State *model.State
	// Wrapped is true when the blob was nested under the storage key, as in a
	// full localStorage export.
	Wrapped bool
	// Unresolved lists legacy referral names that matched no client.
	Unresolved []string
	// Warnings lists rows kept as-is despite malformed fields.
	Warnings []string
}
