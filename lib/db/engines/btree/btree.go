package btree

import (
	"github.com/ValentinKolb/tinyKV/lib/db"
	"github.com/ValentinKolb/tinyKV/lib/db/engines/btree/internal"
	"github.com/ValentinKolb/tinyKV/lib/db/util"
	gbtree "github.com/google/btree"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	defaultDegree    = 32  // Default branching factor of the tree
	samplesForSizing = 128 // Number of entries sampled in GetInfo
)

// --------------------------------------------------------------------------
// Core BTree database structure
// --------------------------------------------------------------------------

// btreeImpl implements db.KVDB on top of an in-memory B-Tree
type btreeImpl struct {
	degree int
	tree   *gbtree.BTreeG[internal.Entry]
}

// DBOptions configures the btreeImpl behavior during initialization
type DBOptions struct {
	Degree int // Branching factor (0 = use default)
}

// DefaultOptions returns the default btreeImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{
		Degree: defaultDegree,
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewBTreeDB creates a new BTree database instance with the specified options (optional)
func NewBTreeDB(opts *DBOptions) db.KVDB {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Degree < 2 {
		opts.Degree = defaultDegree
	}

	return &btreeImpl{
		degree: opts.Degree,
		tree:   gbtree.NewG[internal.Entry](opts.Degree, internal.Less),
	}
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Set inserts or updates an entry with the given key and value.
// If the key already exists, the old value is overwritten.
//
// Thread-safety: This method is not thread-safe.
func (b *btreeImpl) Set(key, value string) error {
	b.tree.ReplaceOrInsert(internal.Entry{Key: key, Value: value})
	return nil
}

// Delete removes an entry with the specified key and returns the removed value.
//
// Thread-safety: This method is not thread-safe.
func (b *btreeImpl) Delete(key string) (string, bool) {
	removed, ok := b.tree.Delete(internal.Pivot(key))
	if !ok {
		return "", false
	}
	return removed.Value, true
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves a value for a key.
//
// Thread-safety: This method is not thread-safe.
func (b *btreeImpl) Get(key string) (string, bool) {
	e, ok := b.tree.Get(internal.Pivot(key))
	if !ok {
		return "", false
	}
	return e.Value, true
}

// Ascend visits up to limit entries with a key >= startKey in ascending order.
//
// Thread-safety: This method is not thread-safe.
func (b *btreeImpl) Ascend(startKey string, limit int, fn func(key, value string) bool) {
	if limit <= 0 {
		return
	}

	visited := 0
	b.tree.AscendGreaterOrEqual(internal.Pivot(startKey), func(e internal.Entry) bool {
		if !fn(e.Key, e.Value) {
			return false
		}
		visited++
		return visited < limit
	})
}

// Len returns the number of entries in the tree
func (b *btreeImpl) Len() int {
	return b.tree.Len()
}

// --------------------------------------------------------------------------
// KVDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database
func (b *btreeImpl) GetInfo() db.DatabaseInfo {

	// sample the first entries of the tree for the size estimate
	histogram := util.NewSizeHistogram()
	count := 0
	b.tree.Ascend(func(e internal.Entry) bool {
		histogram.AddSample(len(e.Key) + len(e.Value))
		count++
		return count < samplesForSizing
	})

	// weighted estimate (60% median, 40% average) per entry times number of entries
	perEntry := (histogram.Percentile(50)*60 + histogram.Mean()*40) / 100
	sizeBytes := perEntry * b.tree.Len()

	// Metadata for this specific database implementation
	meta := &struct {
		Degree      int    `json:"degree"`
		SampleCount int    `json:"sample_count"`
		P95Entry    int    `json:"p95_entry_bytes"`
		Info        string `json:"info"`
	}{
		Degree:      b.degree,
		SampleCount: count,
		P95Entry:    histogram.Percentile(95),
		Info:        "SizeBytes is an estimate based on a sample of the stored entries.",
	}

	return db.DatabaseInfo{
		KeyCount:          b.tree.Len(),
		SizeBytes:         sizeBytes,
		DbType:            db.ImplBTree,
		SupportedFeatures: []db.Feature{db.FeatureSet, db.FeatureGet, db.FeatureDelete, db.FeatureAscend},
		Metadata:          meta,
	}
}

// SupportsFeature checks if this implementation supports a specific KVDB feature
func (b *btreeImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureSet |
		db.FeatureGet |
		db.FeatureDelete |
		db.FeatureAscend
	return supportedFeatures&feature == feature
}

// Close drops all entries
func (b *btreeImpl) Close() error {
	b.tree.Clear(false)
	return nil
}
