package internal

import "fmt"

// --------------------------------------------------------------------------
// Entry Type (key-value pair stored in the tree)
// --------------------------------------------------------------------------

// Entry stores a key-value pair
type Entry struct {
	Key   string // Ordering key
	Value string // Stored data
}

func (e Entry) String() string {
	return fmt.Sprintf("Entry{Key: %q, Value: %d bytes}", e.Key, len(e.Value))
}

// Less orders entries by byte-wise comparison of their keys.
// Go string comparison is already byte-lexicographic.
func Less(a, b Entry) bool {
	return a.Key < b.Key
}

// Pivot creates a search entry for the given key
func Pivot(key string) Entry {
	return Entry{Key: key}
}
