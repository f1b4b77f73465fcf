// Package chain defines the capability the engine needs from its host
// blockchain runtime: the genesis block hash mixed into identifier
// derivation.
//
// Frame-style pallets usually reach for this through a process-global
// (frame_system's block_hash(0)). Here every component takes a Context
// explicitly instead, so tests and replicas never share hidden state.
package chain

// Context carries the host-provided facts the engine needs but does not
// itself produce.
type Context struct {
	// GenesisHash is the hash of block zero on this chain. It is mixed into
	// every identifier derivation so the same public key or content yields a
	// different id on a different chain, preventing cross-chain replay of
	// the textual id form.
	GenesisHash []byte
}

// New builds a Context from a genesis hash. The hash is not size-constrained
// by the engine — it is opaque material, whatever the host's block hash type
// produces.
func New(genesisHash []byte) Context {
	return Context{GenesisHash: append([]byte(nil), genesisHash...)}
}
