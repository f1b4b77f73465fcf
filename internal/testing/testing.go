// Package testing provides shared test setup for building scratch engines,
// so individual _test.go files don't repeat the same store/chain wiring.
//
// It lives apart from internal/testkeys (which mints keypairs) because it
// imports engine — and engine, transitively, imports did, statuslist and
// schema, so this package cannot be imported back from any of those
// packages' own internal test files without an import cycle. Its only
// consumer is rpc/, which sits outside that dependency graph.
package testing

import (
	"testing"

	"github.com/Quantum-Blockchains/qsb-node/chain"
	"github.com/Quantum-Blockchains/qsb-node/engine"
	"github.com/Quantum-Blockchains/qsb-node/store"
)

// NewEngine builds an in-memory Engine bound to an all-zero genesis hash.
// Registers no cleanup — the memory store needs none.
func NewEngine(t *testing.T) *engine.Engine {
	t.Helper()
	return engine.New(store.NewMemory(), chain.New(make([]byte, 32)))
}
