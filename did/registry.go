package did

import (
	"github.com/Quantum-Blockchains/qsb-node/chain"
	"github.com/Quantum-Blockchains/qsb-node/cryptosuite"
	"github.com/Quantum-Blockchains/qsb-node/errors"
	"github.com/Quantum-Blockchains/qsb-node/identifier"
	"github.com/Quantum-Blockchains/qsb-node/store"
	"github.com/Quantum-Blockchains/qsb-node/wire"
)

// Domain-separation prefixes for each command's canonical signing payload.
const (
	PrefixCreate         = "QSB_DID_CREATE"
	PrefixAddKey         = "QSB_DID_ADD_KEY"
	PrefixRevokeKey      = "QSB_DID_REVOKE_KEY"
	PrefixDeactivate     = "QSB_DID_DEACTIVATE"
	PrefixAddService     = "QSB_DID_ADD_SERVICE"
	PrefixRemoveService  = "QSB_DID_REMOVE_SERVICE"
	PrefixSetMetadata    = "QSB_DID_SET_METADATA"
	PrefixRemoveMetadata = "QSB_DID_REMOVE_METADATA"
	PrefixRotateKey      = "QSB_DID_ROTATE_KEY"
	PrefixUpdateRoles    = "QSB_DID_UPDATE_ROLES"
)

// Registry applies the ten DID mutation commands against a Store, under a
// fixed chain Context.
type Registry struct {
	store store.Store
	chain chain.Context
}

// New builds a Registry over s, bound to ctx's genesis discriminator.
func New(s store.Store, ctx chain.Context) *Registry {
	return &Registry{store: s, chain: ctx}
}

func (r *Registry) has(id identifier.ID) (bool, error) {
	return r.store.Has(store.BucketDid, store.Key(id))
}

func (r *Registry) load(id identifier.ID) (Details, error) {
	raw, ok, err := r.store.Get(store.BucketDid, store.Key(id))
	if err != nil {
		return Details{}, errors.Wrap(err, "load did")
	}
	if !ok {
		return Details{}, errors.ErrDidNotFound
	}
	var d Details
	if err := wire.Unmarshal(raw, &d); err != nil {
		return Details{}, errors.Wrap(err, "decode did record")
	}
	return d, nil
}

func (r *Registry) save(id identifier.ID, d Details) error {
	raw, err := wire.Marshal(d)
	if err != nil {
		return err
	}
	return r.store.Put(store.BucketDid, store.Key(id), raw)
}

// verifySignature implements verify_did_signature: iterate non-revoked keys
// in insertion order, succeed on the first that validates signature over
// payload. No role differentiates which keys may authorize which commands.
func (r *Registry) verifySignature(d Details, signature, payload []byte) error {
	if err := cryptosuite.ValidateSignatureEncoding(signature); err != nil {
		return err
	}
	for _, k := range d.Keys {
		if k.Revoked {
			continue
		}
		pk, err := cryptosuite.ParsePublicKey(k.PublicKey)
		if err != nil {
			continue // a stored key that no longer parses can't authorize anything
		}
		if cryptosuite.Verify(pk, payload, signature) {
			return nil
		}
	}
	return errors.ErrInvalidSignature
}

// Get resolves a DID (textual or raw base58 form) against the current
// state. It never mutates.
func (r *Registry) Get(didText string) (*Details, bool, error) {
	id, err := identifier.DecodeDid(didText)
	if err != nil {
		return nil, false, err
	}
	d, err := r.load(id)
	if errors.Is(err, errors.ErrDidNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

// CreateDid derives the DID id from publicKey, verifies signature directly
// against publicKey (no stored key set yet exists), and inserts a new
// DidDetails with a single Authentication key.
func (r *Registry) CreateDid(publicKey, signature []byte) (*DidCreated, error) {
	id := identifier.DeriveDid(r.chain, publicKey)

	exists, err := r.has(id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrDidAlreadyExists
	}

	payload, err := wire.NewPayload(PrefixCreate).Field(publicKey).Bytes()
	if err != nil {
		return nil, err
	}
	if err := cryptosuite.VerifyWithPublicKey(publicKey, signature, payload); err != nil {
		return nil, err
	}

	details := Details{
		Version: 0,
		Keys: []Key{{
			PublicKey: append([]byte(nil), publicKey...),
			Roles:     []KeyRole{RoleAuthentication},
			Revoked:   false,
		}},
	}
	if err := r.save(id, details); err != nil {
		return nil, err
	}

	return &DidCreated{Did: identifier.EncodeDid(id)}, nil
}

// AddKey appends a new, non-duplicate key to the DID's key set.
func (r *Registry) AddKey(didIDBytes, publicKey []byte, roles []KeyRole, signature []byte) (*KeyAdded, error) {
	payload, err := wire.NewPayload(PrefixAddKey).Field(didIDBytes).Field(publicKey).Field(roles).Bytes()
	if err != nil {
		return nil, err
	}

	id, err := identifier.DecodeDid(string(didIDBytes))
	if err != nil {
		return nil, err
	}
	details, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if err := r.verifySignature(details, signature, payload); err != nil {
		return nil, err
	}
	if details.Deactivated {
		return nil, errors.ErrDidDeactivated
	}
	if details.hasPublicKey(publicKey) {
		return nil, errors.ErrKeyAlreadyExists
	}

	staged := details.clone()
	staged.Keys = append(staged.Keys, Key{
		PublicKey: append([]byte(nil), publicKey...),
		Roles:     append([]KeyRole(nil), roles...),
		Revoked:   false,
	})
	staged.Version = saturatingInc(staged.Version)

	if err := r.save(id, staged); err != nil {
		return nil, err
	}
	return &KeyAdded{Did: identifier.EncodeDid(id), PublicKey: publicKey}, nil
}

// RevokeKey marks a key as revoked. Self-revocation of the signing key is
// allowed — authorization is checked against pre-mutation state.
func (r *Registry) RevokeKey(didIDBytes, publicKey, signature []byte) (*KeyRevoked, error) {
	payload, err := wire.NewPayload(PrefixRevokeKey).Field(didIDBytes).Field(publicKey).Bytes()
	if err != nil {
		return nil, err
	}

	id, err := identifier.DecodeDid(string(didIDBytes))
	if err != nil {
		return nil, err
	}
	details, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if err := r.verifySignature(details, signature, payload); err != nil {
		return nil, err
	}
	if details.Deactivated {
		return nil, errors.ErrDidDeactivated
	}

	staged := details.clone()
	key := staged.findKey(publicKey)
	if key == nil {
		return nil, errors.ErrKeyNotFound
	}
	if key.Revoked {
		return nil, errors.ErrKeyAlreadyRevoked
	}
	key.Revoked = true
	staged.Version = saturatingInc(staged.Version)

	if err := r.save(id, staged); err != nil {
		return nil, err
	}
	return &KeyRevoked{Did: identifier.EncodeDid(id), PublicKey: publicKey}, nil
}

// DeactivateDid terminally deactivates a DID. Absorbing: no further
// mutation can succeed once set.
func (r *Registry) DeactivateDid(didIDBytes, signature []byte) (*DidDeactivated, error) {
	payload, err := wire.NewPayload(PrefixDeactivate).Field(didIDBytes).Bytes()
	if err != nil {
		return nil, err
	}

	id, err := identifier.DecodeDid(string(didIDBytes))
	if err != nil {
		return nil, err
	}
	details, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if err := r.verifySignature(details, signature, payload); err != nil {
		return nil, err
	}
	if details.Deactivated {
		return nil, errors.ErrDidDeactivated
	}

	staged := details.clone()
	staged.Deactivated = true
	staged.Version = saturatingInc(staged.Version)

	if err := r.save(id, staged); err != nil {
		return nil, err
	}
	return &DidDeactivated{Did: identifier.EncodeDid(id)}, nil
}

// AddService appends a service endpoint, unique by id.
func (r *Registry) AddService(didIDBytes []byte, service Service, signature []byte) (*ServiceAdded, error) {
	payload, err := wire.NewPayload(PrefixAddService).Field(didIDBytes).Field(service).Bytes()
	if err != nil {
		return nil, err
	}

	id, err := identifier.DecodeDid(string(didIDBytes))
	if err != nil {
		return nil, err
	}
	details, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if err := r.verifySignature(details, signature, payload); err != nil {
		return nil, err
	}
	if details.Deactivated {
		return nil, errors.ErrDidDeactivated
	}
	for _, s := range details.Services {
		if bytesEqual(s.ID, service.ID) {
			return nil, errors.ErrServiceAlreadyExists
		}
	}

	staged := details.clone()
	staged.Services = append(staged.Services, Service{
		ID:          append([]byte(nil), service.ID...),
		ServiceType: append([]byte(nil), service.ServiceType...),
		Endpoint:    append([]byte(nil), service.Endpoint...),
	})
	staged.Version = saturatingInc(staged.Version)

	if err := r.save(id, staged); err != nil {
		return nil, err
	}
	return &ServiceAdded{Did: identifier.EncodeDid(id), ServiceID: service.ID}, nil
}

// RemoveService removes a service endpoint by id. The remaining sequence's
// order is not guaranteed stable (swap-remove).
func (r *Registry) RemoveService(didIDBytes, serviceID []byte, signature []byte) (*ServiceRemoved, error) {
	payload, err := wire.NewPayload(PrefixRemoveService).Field(didIDBytes).Field(serviceID).Bytes()
	if err != nil {
		return nil, err
	}

	id, err := identifier.DecodeDid(string(didIDBytes))
	if err != nil {
		return nil, err
	}
	details, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if err := r.verifySignature(details, signature, payload); err != nil {
		return nil, err
	}
	if details.Deactivated {
		return nil, errors.ErrDidDeactivated
	}

	staged := details.clone()
	idx := -1
	for i, s := range staged.Services {
		if bytesEqual(s.ID, serviceID) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, errors.ErrServiceNotFound
	}
	last := len(staged.Services) - 1
	staged.Services[idx] = staged.Services[last]
	staged.Services = staged.Services[:last]
	staged.Version = saturatingInc(staged.Version)

	if err := r.save(id, staged); err != nil {
		return nil, err
	}
	return &ServiceRemoved{Did: identifier.EncodeDid(id), ServiceID: serviceID}, nil
}

// SetMetadata overwrites the value in place if key exists (position
// preserved), else appends a new entry.
func (r *Registry) SetMetadata(didIDBytes []byte, entry Metadata, signature []byte) (*MetadataSet, error) {
	payload, err := wire.NewPayload(PrefixSetMetadata).Field(didIDBytes).Field(entry).Bytes()
	if err != nil {
		return nil, err
	}

	id, err := identifier.DecodeDid(string(didIDBytes))
	if err != nil {
		return nil, err
	}
	details, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if err := r.verifySignature(details, signature, payload); err != nil {
		return nil, err
	}
	if details.Deactivated {
		return nil, errors.ErrDidDeactivated
	}

	staged := details.clone()
	found := false
	for i := range staged.Metadata {
		if bytesEqual(staged.Metadata[i].Key, entry.Key) {
			staged.Metadata[i].Value = append([]byte(nil), entry.Value...)
			found = true
			break
		}
	}
	if !found {
		staged.Metadata = append(staged.Metadata, Metadata{
			Key:   append([]byte(nil), entry.Key...),
			Value: append([]byte(nil), entry.Value...),
		})
	}
	staged.Version = saturatingInc(staged.Version)

	if err := r.save(id, staged); err != nil {
		return nil, err
	}
	return &MetadataSet{Did: identifier.EncodeDid(id), Key: entry.Key}, nil
}

// RemoveMetadata removes a metadata entry by key (swap-remove).
func (r *Registry) RemoveMetadata(didIDBytes, key []byte, signature []byte) (*MetadataRemoved, error) {
	payload, err := wire.NewPayload(PrefixRemoveMetadata).Field(didIDBytes).Field(key).Bytes()
	if err != nil {
		return nil, err
	}

	id, err := identifier.DecodeDid(string(didIDBytes))
	if err != nil {
		return nil, err
	}
	details, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if err := r.verifySignature(details, signature, payload); err != nil {
		return nil, err
	}
	if details.Deactivated {
		return nil, errors.ErrDidDeactivated
	}

	staged := details.clone()
	idx := -1
	for i, m := range staged.Metadata {
		if bytesEqual(m.Key, key) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, errors.ErrMetadataNotFound
	}
	last := len(staged.Metadata) - 1
	staged.Metadata[idx] = staged.Metadata[last]
	staged.Metadata = staged.Metadata[:last]
	staged.Version = saturatingInc(staged.Version)

	if err := r.save(id, staged); err != nil {
		return nil, err
	}
	return &MetadataRemoved{Did: identifier.EncodeDid(id), Key: key}, nil
}

// RotateKey revokes oldPublicKey and appends newPublicKey with the supplied
// roles. newPublicKey is not automatically granted Authentication — callers
// must include it among roles if they want it.
func (r *Registry) RotateKey(didIDBytes, oldPublicKey, newPublicKey []byte, roles []KeyRole, signature []byte) (*KeyRotated, error) {
	payload, err := wire.NewPayload(PrefixRotateKey).
		Field(didIDBytes).Field(oldPublicKey).Field(newPublicKey).Field(roles).Bytes()
	if err != nil {
		return nil, err
	}

	id, err := identifier.DecodeDid(string(didIDBytes))
	if err != nil {
		return nil, err
	}
	details, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if err := r.verifySignature(details, signature, payload); err != nil {
		return nil, err
	}
	if details.Deactivated {
		return nil, errors.ErrDidDeactivated
	}
	if details.hasPublicKey(newPublicKey) {
		return nil, errors.ErrKeyAlreadyExists
	}

	staged := details.clone()
	old := staged.findKey(oldPublicKey)
	if old == nil {
		return nil, errors.ErrKeyNotFound
	}
	if old.Revoked {
		return nil, errors.ErrKeyAlreadyRevoked
	}
	old.Revoked = true
	staged.Keys = append(staged.Keys, Key{
		PublicKey: append([]byte(nil), newPublicKey...),
		Roles:     append([]KeyRole(nil), roles...),
		Revoked:   false,
	})
	staged.Version = saturatingInc(staged.Version)

	if err := r.save(id, staged); err != nil {
		return nil, err
	}
	return &KeyRotated{Did: identifier.EncodeDid(id), OldPublicKey: oldPublicKey, NewPublicKey: newPublicKey}, nil
}

// UpdateRoles replaces the roles sequence of a non-revoked key.
func (r *Registry) UpdateRoles(didIDBytes, publicKey []byte, roles []KeyRole, signature []byte) (*RolesUpdated, error) {
	payload, err := wire.NewPayload(PrefixUpdateRoles).Field(didIDBytes).Field(publicKey).Field(roles).Bytes()
	if err != nil {
		return nil, err
	}

	id, err := identifier.DecodeDid(string(didIDBytes))
	if err != nil {
		return nil, err
	}
	details, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if err := r.verifySignature(details, signature, payload); err != nil {
		return nil, err
	}
	if details.Deactivated {
		return nil, errors.ErrDidDeactivated
	}

	staged := details.clone()
	key := staged.findKey(publicKey)
	if key == nil {
		return nil, errors.ErrKeyNotFound
	}
	if key.Revoked {
		return nil, errors.ErrKeyAlreadyRevoked
	}
	key.Roles = append([]KeyRole(nil), roles...)
	staged.Version = saturatingInc(staged.Version)

	if err := r.save(id, staged); err != nil {
		return nil, err
	}
	return &RolesUpdated{Did: identifier.EncodeDid(id), PublicKey: publicKey}, nil
}
