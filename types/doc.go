// Package types provides core type definitions and interfaces for the submux library.
//
// This package contains the contracts shared by the coordinator and its
// collaborators. Keeping them here avoids import cycles between the root
// submux package and the transport, codec and variant packages.
//
// Key types:
//   - Transport: Raw subscribe/unsubscribe commands and per-channel mutexes
//   - Listener: Channel event callbacks registered with a transport
//   - Codec: Payload encoding
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
