package store

import (
	"go.etcd.io/bbolt"

	"github.com/Quantum-Blockchains/qsb-node/errors"
)

// Bolt is a Store backed by an embedded go.etcd.io/bbolt file, giving the
// demo host (cmd/qsbdidd) cross-restart persistence of the three registries
// without a separate database process. Each Bucket maps directly onto a
// bbolt top-level bucket.
type Bolt struct {
	db *bbolt.DB
}

var allBuckets = []Bucket{BucketDid, BucketStatusList, BucketSchema}

// OpenBolt opens (creating if absent) a bbolt database at path and ensures
// all three registry buckets exist.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open bbolt store at %s", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(b)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize bbolt buckets")
	}

	return &Bolt{db: db}, nil
}

// Close closes the underlying bbolt file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) Get(bucket Bucket, key Key) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		bk := tx.Bucket([]byte(bucket))
		if bk == nil {
			return nil
		}
		v := bk.Get(key[:])
		if v != nil {
			value = make([]byte, len(v))
			copy(value, v)
		}
		return nil
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "bbolt get")
	}
	return value, value != nil, nil
}

func (b *Bolt) Has(bucket Bucket, key Key) (bool, error) {
	_, ok, err := b.Get(bucket, key)
	return ok, err
}

func (b *Bolt) Put(bucket Bucket, key Key, value []byte) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bk, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		return bk.Put(key[:], value)
	})
	if err != nil {
		return errors.Wrap(err, "bbolt put")
	}
	return nil
}
