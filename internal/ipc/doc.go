// Package ipc exposes daemon control via JSON-RPC over a Unix domain
// socket, and provides the client the CLI uses to reach it.
package ipc
