package db

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplBTree Implementation = "btree"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureSet    Feature = 1 << iota // Support for Set operations
	FeatureGet                        // Support for Get operations
	FeatureDelete                     // Support for Delete operations
	FeatureAscend                     // Support for ordered Ascend iteration
)

func (f Feature) String() string {
	switch f {
	case FeatureSet:
		return "Set"
	case FeatureGet:
		return "Get"
	case FeatureDelete:
		return "Delete"
	case FeatureAscend:
		return "Ascend"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	KeyCount          int            `json:"key_count"`
	SizeBytes         int            `json:"size_bytes"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines an interface for an ordered key-value database holding the data of
// exactly one column family. Keys are ordered by byte-wise comparison.
//
// Implementations are NOT required to be thread-safe. The owner of a KVDB (e.g. the
// local store) is responsible for serializing all access to it.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Set inserts or updates the entry for the given key.
	// If the key already exists, the old value is overwritten.
	// An error means that the write was not applied.
	Set(key, value string) (err error)

	// Delete removes the entry for the given key and returns the removed value.
	// The boolean return value indicates whether an entry was removed.
	Delete(key string) (value string, loaded bool)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a value for the key was found.
	Get(key string) (value string, loaded bool)

	// Ascend calls fn for every entry with a key >= startKey in ascending key order.
	// Iteration stops after limit entries or as soon as fn returns false.
	// A limit <= 0 means that no entry is visited.
	Ascend(startKey string, limit int, fn func(key, value string) bool)

	// Len returns the number of entries.
	Len() int

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close releases all resources held by the database.
	Close() (err error)
}
