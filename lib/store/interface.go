package store

import (
	"fmt"

	"github.com/ValentinKolb/tinyKV/lib/db"
	"github.com/ValentinKolb/tinyKV/lib/db/util"
	"github.com/cockroachdb/errors"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// DBFactory is a function type that creates a new db used by the store.
// The store calls it once for every column family it creates.
type DBFactory func() db.KVDB

// IStore is the generic interface for interacting with a key-value store that is
// partitioned into independent column families.
// All write operations return only an error (nil on success),
// while read operations return the requested data along with an error (nil on success).
// Every non-nil error returned by an implementation is a *Error.
type IStore interface {
	// Put inserts or updates a key-value pair in the given family.
	// The family is created if it does not exist yet.
	Put(family, key, value string) (err error)
	// Get returns the value for a key. Fails with RetCFamilyNotFound if the family was never
	// written and with RetCKeyNotFound if the key is absent.
	Get(family, key string) (value string, err error)
	// Delete removes a key-value pair and returns the removed value.
	// Deleting a missing key fails with RetCKeyNotFound.
	Delete(family, key string) (value string, err error)
	// Scan returns up to limit pairs with key >= startKey in ascending key order.
	// An empty result fails with RetCKeyNotFound.
	Scan(family, startKey string, limit int) (pairs []KVPair, err error)
	// Info returns metadata about the store and its families.
	// It is not guaranteed that all fields are filled in!
	Info() (info StoreInfo, err error)
}

// KVPair is a single key-value entry as returned by Scan.
type KVPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (p KVPair) String() string {
	return fmt.Sprintf("%s=%s", p.Key, p.Value)
}

// FamilyInfo describes a single column family.
type FamilyInfo struct {
	Name     string          `json:"name"`
	KeyCount int             `json:"key_count"`
	DBInfo   db.DatabaseInfo `json:"db_info"`
}

// StoreInfo describes the whole store.
type StoreInfo struct {
	FamilyCount     int                  `json:"family_count"`
	KeyCount        int                  `json:"key_count"`
	SizeBytes       int                  `json:"size_bytes"`
	Families        []FamilyInfo         `json:"families"`
	KeyDistribution util.KeyDistribution `json:"key_distribution"`
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KVStoreError (code %s): %s", e.Code, e.Msg)
}

// Is reports whether target is a *Error with the same code.
// This allows errors.Is(err, store.ErrKeyNotFound) regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new KVStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewErrorf creates a new KVStoreError with a formatted message.
func NewErrorf(code RetCode, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// CodeOf returns the RetCode carried by err.
// A nil error maps to RetCSuccess, an error that is not a *Error to RetCInternalError.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCInternalError
}

// IsCode reports whether err carries the given RetCode.
func IsCode(err error, code RetCode) bool {
	return err != nil && CodeOf(err) == code
}

// Sentinel errors for use with errors.Is.
var (
	ErrLockAcquisition = NewError(RetCLockAcquisition, "lock acquisition failed")
	ErrFamilyNotFound  = NewError(RetCFamilyNotFound, "family not found")
	ErrKeyNotFound     = NewError(RetCKeyNotFound, "key not found")
	ErrInsertionFailed = NewError(RetCInsertionFailed, "insertion failed")
	ErrInvalidArgument = NewError(RetCInvalidArgument, "invalid argument")
)

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess         RetCode = iota // 0: Command executed successfully.
	RetCInternalError                  // 1: Command failed due to an internal error (transport, serialization, ...).
	RetCLockAcquisition                // 2: The store lock is poisoned.
	RetCFamilyNotFound                 // 3: The column family was never written.
	RetCKeyNotFound                    // 4: The key (or any key for a scan) was not found.
	RetCInsertionFailed                // 5: The family engine refused a write.
	RetCInvalidArgument                // 6: A request argument was rejected.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCLockAcquisition:
		return "LockAcquisitionFailure"
	case RetCFamilyNotFound:
		return "FamilyNotFound"
	case RetCKeyNotFound:
		return "KeyNotFound"
	case RetCInsertionFailed:
		return "InsertionFailed"
	case RetCInvalidArgument:
		return "InvalidArgument"
	default:
		return "Unknown"
	}
}
