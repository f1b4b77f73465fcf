// Package cryptosuite parses and verifies ML-DSA-44 keys and signatures.
//
// It wraps github.com/cloudflare/circl's generic sign.Scheme interface
// rather than calling the mldsa44 package directly, so swapping in
// ML-DSA-65/87 or a hybrid scheme later is a one-line change to Scheme
// instead of a refactor of every call site.
package cryptosuite

import (
	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/mldsa/mldsa44"

	"github.com/Quantum-Blockchains/qsb-node/errors"
)

// Scheme is the signature algorithm this engine is bound to today.
var Scheme sign.Scheme = mldsa44.Scheme()

// ParsePublicKey parses raw bytes as an ML-DSA-44 public key. Returns
// ErrInvalidPublicKey if the bytes are malformed or the wrong length.
func ParsePublicKey(raw []byte) (sign.PublicKey, error) {
	if len(raw) != Scheme.PublicKeySize() {
		return nil, errors.ErrInvalidPublicKey
	}
	pk, err := Scheme.UnmarshalBinaryPublicKey(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidPublicKey, err.Error())
	}
	return pk, nil
}

// ValidateSignatureEncoding checks that raw is a well-formed ML-DSA-44
// signature (the correct fixed width). It does not verify the signature
// against any key or payload. Returns ErrInvalidDidSignature otherwise.
func ValidateSignatureEncoding(raw []byte) error {
	if len(raw) != Scheme.SignatureSize() {
		return errors.ErrInvalidDidSignature
	}
	return nil
}

// VerifyWithPublicKey implements verify_with_public_key: parses pk and sig
// as ML-DSA-44 artifacts and checks sig over payload under pk. Used only by
// create_did, where no stored key set yet exists to verify against.
func VerifyWithPublicKey(rawPublicKey, signature, payload []byte) error {
	pk, err := ParsePublicKey(rawPublicKey)
	if err != nil {
		return err
	}
	if err := ValidateSignatureEncoding(signature); err != nil {
		return err
	}
	if !Scheme.Verify(pk, payload, signature, nil) {
		return errors.ErrInvalidSignature
	}
	return nil
}

// Verify reports whether signature is a valid ML-DSA-44 signature over
// payload under pk.
func Verify(pk sign.PublicKey, payload, signature []byte) bool {
	return Scheme.Verify(pk, payload, signature, nil)
}

// GenerateKeyPair is a test/demo convenience for minting ML-DSA-44
// keypairs; it is not used by the command-application path.
func GenerateKeyPair() (sign.PublicKey, sign.PrivateKey, error) {
	pk, sk, err := Scheme.GenerateKey()
	if err != nil {
		return nil, nil, errors.Wrap(err, "generate ml-dsa-44 keypair")
	}
	return pk, sk, nil
}

// Sign is a test/demo convenience wrapping Scheme.Sign.
func Sign(sk sign.PrivateKey, payload []byte) []byte {
	return Scheme.Sign(sk, payload, nil)
}

// PublicKeyBytes marshals a public key to its wire form.
func PublicKeyBytes(pk sign.PublicKey) ([]byte, error) {
	b, err := pk.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "marshal public key")
	}
	return b, nil
}
