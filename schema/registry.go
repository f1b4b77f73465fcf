package schema

import (
	"github.com/Quantum-Blockchains/qsb-node/chain"
	"github.com/Quantum-Blockchains/qsb-node/errors"
	"github.com/Quantum-Blockchains/qsb-node/identifier"
	"github.com/Quantum-Blockchains/qsb-node/store"
	"github.com/Quantum-Blockchains/qsb-node/wire"
)

// Registry applies register_schema and deprecate_schema against a Store.
//
// did_signature is accepted by both commands but is not verified against
// the issuer's key set — plumbed through for wire compatibility and future
// use, not enforced.
type Registry struct {
	store store.Store
	chain chain.Context
}

// New builds a Registry over s, bound to ctx's genesis discriminator.
func New(s store.Store, ctx chain.Context) *Registry {
	return &Registry{store: s, chain: ctx}
}

func (r *Registry) has(id identifier.ID) (bool, error) {
	return r.store.Has(store.BucketSchema, store.Key(id))
}

func (r *Registry) load(id identifier.ID) (Record, error) {
	raw, ok, err := r.store.Get(store.BucketSchema, store.Key(id))
	if err != nil {
		return Record{}, errors.Wrap(err, "load schema")
	}
	if !ok {
		return Record{}, errors.ErrSchemaNotFound
	}
	var rec Record
	if err := wire.Unmarshal(raw, &rec); err != nil {
		return Record{}, errors.Wrap(err, "decode schema record")
	}
	return rec, nil
}

func (r *Registry) save(id identifier.ID, rec Record) error {
	raw, err := wire.Marshal(rec)
	if err != nil {
		return err
	}
	return r.store.Put(store.BucketSchema, store.Key(id), raw)
}

// Get resolves a schema (textual or raw base58 form).
func (r *Registry) Get(schemaText string) (*Record, bool, error) {
	id, err := identifier.DecodeSchema(schemaText)
	if err != nil {
		return nil, false, err
	}
	rec, err := r.load(id)
	if errors.Is(err, errors.ErrSchemaNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

// RegisterSchema registers schemaJSON content-addressed by its own bytes
// (mixed with the chain genesis). Re-registering byte-identical content is
// rejected; distinct content, even if semantically equivalent, gets its own
// id.
func (r *Registry) RegisterSchema(schemaJSON, schemaURI, issuerDid []byte, didSignature []byte) (*SchemaRegistered, error) {
	_ = didSignature

	id := identifier.DeriveSchema(r.chain, schemaJSON)

	exists, err := r.has(id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrSchemaAlreadyExists
	}

	rec := Record{
		Version:    0,
		Deprecated: false,
		IssuerDid:  append([]byte(nil), issuerDid...),
		SchemaHash: identifier.SchemaHash(schemaJSON),
		SchemaURI:  append([]byte(nil), schemaURI...),
	}
	if err := r.save(id, rec); err != nil {
		return nil, err
	}

	return &SchemaRegistered{
		SchemaID:  identifier.EncodeSchema(id),
		IssuerDid: issuerDid,
	}, nil
}

// DeprecateSchema marks a schema deprecated, requiring the caller-supplied
// issuerDid to match the schema's recorded issuer. Deprecation is terminal:
// deprecating an already-deprecated schema fails.
func (r *Registry) DeprecateSchema(schemaIDBytes, issuerDid []byte, didSignature []byte) (*SchemaDeprecatedEvent, error) {
	_ = didSignature

	id, err := identifier.DecodeSchema(string(schemaIDBytes))
	if err != nil {
		return nil, err
	}
	rec, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if rec.Deprecated {
		return nil, errors.ErrSchemaDeprecated
	}
	if !bytesEqual(rec.IssuerDid, issuerDid) {
		return nil, errors.ErrIssuerMismatch
	}

	staged := rec.clone()
	staged.Deprecated = true
	staged.Version = saturatingInc(staged.Version)

	if err := r.save(id, staged); err != nil {
		return nil, err
	}

	return &SchemaDeprecatedEvent{
		SchemaID:  identifier.EncodeSchema(id),
		IssuerDid: issuerDid,
	}, nil
}
