// Package identifier derives the three 32-byte identifier kinds from
// content, and encodes/decodes their textual did:qsb:... forms.
package identifier

import (
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"

	"github.com/Quantum-Blockchains/qsb-node/chain"
	"github.com/Quantum-Blockchains/qsb-node/errors"
)

// Kind distinguishes the three identifier namespaces so a single id value
// can never be mistaken for another kind even if the raw bytes collide —
// each is derived under its own domain-separation prefix, keeping the
// three mappings disjoint.
type Kind int

const (
	KindDid Kind = iota
	KindStatusList
	KindSchema
)

const (
	didMaterialPrefix        = "QSB_DID"
	statusListMaterialPrefix = "QSB_STATUSLIST"
	schemaMaterialPrefix     = "QSB_SCHEMA"

	// DidTextPrefix, StatusListTextPrefix and SchemaTextPrefix are the
	// textual prefixes for the three did:qsb:... forms.
	DidTextPrefix        = "did:qsb:"
	StatusListTextPrefix = "did:qsb:statuslist:"
	SchemaTextPrefix     = "did:qsb:schema:"
)

// ID is a derived 32-byte identifier.
type ID [32]byte

// DeriveDid computes the DID identifier for a creating public key:
// blake2b-256("QSB_DID" || genesis || public_key).
func DeriveDid(ctx chain.Context, publicKey []byte) ID {
	return derive(ctx, didMaterialPrefix, publicKey)
}

// DeriveStatusList computes a status list identifier:
// blake2b-256("QSB_STATUSLIST" || genesis || issuer_did || list_nonce).
func DeriveStatusList(ctx chain.Context, issuerDid, listNonce []byte) ID {
	entity := make([]byte, 0, len(issuerDid)+len(listNonce))
	entity = append(entity, issuerDid...)
	entity = append(entity, listNonce...)
	return derive(ctx, statusListMaterialPrefix, entity)
}

// DeriveSchema computes a schema identifier:
// blake2b-256("QSB_SCHEMA" || genesis || schema_json). Note this is distinct
// from SchemaHash (blake2b-256(schema_json) alone, no prefix or genesis) —
// the id is chain-bound, the content hash is not.
func DeriveSchema(ctx chain.Context, schemaJSON []byte) ID {
	return derive(ctx, schemaMaterialPrefix, schemaJSON)
}

// SchemaHash computes the bare content hash of schema bytes, with no prefix
// and no genesis mixed in.
func SchemaHash(schemaJSON []byte) [32]byte {
	return blake2b.Sum256(schemaJSON)
}

func derive(ctx chain.Context, materialPrefix string, entity []byte) ID {
	material := make([]byte, 0, len(materialPrefix)+len(ctx.GenesisHash)+len(entity))
	material = append(material, materialPrefix...)
	material = append(material, ctx.GenesisHash...)
	material = append(material, entity...)
	return blake2b.Sum256(material)
}

// EncodeDid renders a did identifier as "did:qsb:<base58>".
func EncodeDid(id ID) string { return DidTextPrefix + base58.Encode(id[:]) }

// EncodeStatusList renders a status list identifier as
// "did:qsb:statuslist:<base58>".
func EncodeStatusList(id ID) string { return StatusListTextPrefix + base58.Encode(id[:]) }

// EncodeSchema renders a schema identifier as "did:qsb:schema:<base58>".
func EncodeSchema(id ID) string { return SchemaTextPrefix + base58.Encode(id[:]) }

// DecodeDid parses either "did:qsb:<base58>" or the raw base58 form.
func DecodeDid(s string) (ID, error) {
	return decode(s, DidTextPrefix, errors.ErrInvalidDidId)
}

// DecodeStatusList parses either "did:qsb:statuslist:<base58>" or the raw
// base58 form.
func DecodeStatusList(s string) (ID, error) {
	return decode(s, StatusListTextPrefix, errors.ErrInvalidStatusListId)
}

// DecodeSchema parses either "did:qsb:schema:<base58>" or the raw base58
// form.
func DecodeSchema(s string) (ID, error) {
	return decode(s, SchemaTextPrefix, errors.ErrInvalidSchemaId)
}

func decode(s, textPrefix string, invalidErr error) (ID, error) {
	raw := strings.TrimPrefix(s, textPrefix)
	decoded, err := base58.Decode(raw)
	if err != nil {
		return ID{}, errors.Wrap(invalidErr, err.Error())
	}
	if len(decoded) != 32 {
		return ID{}, invalidErr
	}
	var id ID
	copy(id[:], decoded)
	return id, nil
}
