package statuslist

import (
	"github.com/Quantum-Blockchains/qsb-node/chain"
	"github.com/Quantum-Blockchains/qsb-node/errors"
	"github.com/Quantum-Blockchains/qsb-node/identifier"
	"github.com/Quantum-Blockchains/qsb-node/store"
	"github.com/Quantum-Blockchains/qsb-node/wire"
)

// MinListNonceBytes is the minimum accepted length of a caller-supplied
// list nonce, guarding against low-entropy nonces that would make
// status_list_id collisions practical.
const MinListNonceBytes = 16

// Registry applies create_status_list and set_status against a Store.
//
// did_signature is accepted by both commands but is not verified against
// the issuer's key set — the parameter is plumbed through for wire
// compatibility and future use, not enforced.
type Registry struct {
	store store.Store
	chain chain.Context
}

// New builds a Registry over s, bound to ctx's genesis discriminator.
func New(s store.Store, ctx chain.Context) *Registry {
	return &Registry{store: s, chain: ctx}
}

func (r *Registry) has(id identifier.ID) (bool, error) {
	return r.store.Has(store.BucketStatusList, store.Key(id))
}

func (r *Registry) load(id identifier.ID) (Details, error) {
	raw, ok, err := r.store.Get(store.BucketStatusList, store.Key(id))
	if err != nil {
		return Details{}, errors.Wrap(err, "load status list")
	}
	if !ok {
		return Details{}, errors.ErrStatusListNotFound
	}
	var d Details
	if err := wire.Unmarshal(raw, &d); err != nil {
		return Details{}, errors.Wrap(err, "decode status list record")
	}
	return d, nil
}

func (r *Registry) save(id identifier.ID, d Details) error {
	raw, err := wire.Marshal(d)
	if err != nil {
		return err
	}
	return r.store.Put(store.BucketStatusList, store.Key(id), raw)
}

// Get resolves a status list (textual or raw base58 form).
func (r *Registry) Get(statusListText string) (*Details, bool, error) {
	id, err := identifier.DecodeStatusList(statusListText)
	if err != nil {
		return nil, false, err
	}
	d, err := r.load(id)
	if errors.Is(err, errors.ErrStatusListNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

// CreateStatusList allocates a new bitmap of listLength bits, all clear
// (not-revoked), addressed by (issuerDid, listNonce).
func (r *Registry) CreateStatusList(issuerDid, listNonce []byte, listLength uint32, didSignature []byte) (*StatusListCreated, error) {
	_ = didSignature

	if len(listNonce) < MinListNonceBytes {
		return nil, errors.ErrInvalidListNonce
	}

	id := identifier.DeriveStatusList(r.chain, issuerDid, listNonce)

	exists, err := r.has(id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrStatusListAlreadyExists
	}

	bitmapLen, overflow := addOverflows(listLength, 7)
	if overflow {
		return nil, errors.ErrStatusIndexOutOfBounds
	}
	bitmapLen /= 8

	details := Details{
		Version:   0,
		IssuerDid: append([]byte(nil), issuerDid...),
		ListNonce: append([]byte(nil), listNonce...),
		Bitmap:    make([]byte, bitmapLen),
	}
	if err := r.save(id, details); err != nil {
		return nil, err
	}

	return &StatusListCreated{
		StatusListID: identifier.EncodeStatusList(id),
		IssuerDid:    issuerDid,
	}, nil
}

// SetStatus sets the revocation bit at statusIndex when revoked is true and
// clears it otherwise, after checking that issuerDid matches the list's
// recorded issuer.
func (r *Registry) SetStatus(statusListIDBytes []byte, issuerDid []byte, statusIndex uint32, revoked bool, didSignature []byte) (*StatusUpdated, error) {
	_ = didSignature

	id, err := identifier.DecodeStatusList(string(statusListIDBytes))
	if err != nil {
		return nil, err
	}
	details, err := r.load(id)
	if err != nil {
		return nil, err
	}
	if !bytesEqual(details.IssuerDid, issuerDid) {
		return nil, errors.ErrIssuerMismatch
	}

	bitCount, overflow := mulOverflows(uint32(len(details.Bitmap)), 8)
	if overflow {
		return nil, errors.ErrStatusIndexOutOfBounds
	}
	if statusIndex >= bitCount {
		return nil, errors.ErrStatusIndexOutOfBounds
	}

	staged := details.clone()
	byteIdx := statusIndex / 8
	mask := byte(1) << (statusIndex % 8)
	if revoked {
		staged.Bitmap[byteIdx] |= mask
	} else {
		staged.Bitmap[byteIdx] &^= mask
	}
	staged.Version = saturatingInc(staged.Version)

	if err := r.save(id, staged); err != nil {
		return nil, err
	}

	return &StatusUpdated{
		StatusListID: identifier.EncodeStatusList(id),
		StatusIndex:  statusIndex,
		Revoked:      revoked,
	}, nil
}

func addOverflows(a uint32, b uint32) (uint32, bool) {
	sum := a + b
	return sum, sum < a
}

func mulOverflows(a uint32, b uint32) (uint32, bool) {
	if a == 0 {
		return 0, false
	}
	product := a * b
	return product, product/a != b
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
