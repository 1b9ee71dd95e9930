package constants

// Revision defaults.
const (
	// DefaultRevisionLabel names revision 1 of a new plant when the request leaves it empty.
	DefaultRevisionLabel = "Initial Design"
	// MaxTextLength bounds names and labels.
	MaxTextLength = 255
)

// Pagination defaults for list endpoints.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// Names given to generated rows.
const (
	GeneratedTankName = "no name"
)

// ExportKeyPrefix is the storage prefix of revision snapshots.
const ExportKeyPrefix = "revisions"
