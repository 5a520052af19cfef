// Package common provides core data structures and utilities shared by the
// client and server side of the RPC system. It defines the wire message,
// configuration structures and the logger factory.
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between components,
//     with a flexible structure that adapts to different operation types.
//     Includes factory methods for creating request and response messages.
//     Error responses carry the store.RetCode next to the message text, so that
//     a client can rebuild the typed *store.Error (see Message.AsError).
//
//   - MessageType: Enumeration defining all supported operation types
//     (put, get, delete, scan, info) and the control messages (success, error).
//
//   - ServerConfig / ClientConfig: Configuration for servers and clients,
//     including the transport settings of both sides.
//
//   - Logger: Custom implementation of dragonboat's logger.ILogger that provides
//     consistent formatting across the application ("LEVEL | name | message").
package common
