// Package testkeys mints ML-DSA-44 keypairs for tests, so individual
// _test.go files across did/, engine/, and rpc/ don't each repeat the same
// cryptosuite plumbing.
package testkeys

import (
	"testing"

	"github.com/Quantum-Blockchains/qsb-node/cryptosuite"
)

// MintKeypair generates a fresh ML-DSA-44 keypair for use in tests and
// returns its public key bytes plus a closure that signs a payload under
// the matching private key.
func MintKeypair(t *testing.T) (pubBytes []byte, sign func(payload []byte) []byte) {
	t.Helper()
	pk, sk, err := cryptosuite.GenerateKeyPair()
	if err != nil {
		t.Fatalf("mint keypair: %v", err)
	}
	pubBytes, err = cryptosuite.PublicKeyBytes(pk)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	return pubBytes, func(payload []byte) []byte {
		return cryptosuite.Sign(sk, payload)
	}
}
