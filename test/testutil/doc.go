// Package testutil provides helpers shared by the integration and stress tests.
//
// It holds scenario-level utilities: churn load against a PubSub, resource
// sampling, and assertions that the registry and transport drained.
//
// For embedded NATS servers and the fake transport, use the
// github.com/arloliu/submux/testing package.
package testutil
