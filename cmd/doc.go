// Package cmd implements the command-line interface for the tinyKV key-value
// store. It provides a hierarchical command structure with operations
// for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (put, get, del, scan, info, perf)
//   - serve: Commands for starting and configuring the tinyKV server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set through the environment using the TKV_ prefix
// (e.g. TKV_TRANSPORT_ENDPOINTS=localhost:8080). Variables from .env and
// .env.local in the working directory are loaded first.
//
// See tkv -help for a list of all commands.
package cmd
