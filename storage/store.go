package storage

import (
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	bucketMeta    = []byte("meta")
	bucketTargets = []byte("targets")
	bucketSigners = []byte("signers")
	bucketNonces  = []byte("nonces")

	keyOwner = []byte("owner")

	// ErrPathRequired is returned when the backing store path is missing.
	ErrPathRequired = errors.New("storage: database path must be configured")
)

// Store persists the router registries: the owner slot, the swap target and
// valid signer allow-lists, and the burned quote nonces. It implements
// router.State.
type Store struct {
	db *bolt.DB
}

// Open initialises (and migrates) the BoltDB-backed store.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, ErrPathRequired
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketMeta, bucketTargets, bucketSigners, bucketNonces} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Owner returns the persisted owner address, reporting presence.
func (s *Store) Owner() ([20]byte, bool, error) {
	var owner [20]byte
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketMeta).Get(keyOwner)
		if len(raw) == 20 {
			copy(owner[:], raw)
			found = true
		}
		return nil
	})
	return owner, found, err
}

// SetOwner replaces the owner slot.
func (s *Store) SetOwner(addr [20]byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyOwner, addr[:])
	})
}

// SwapTarget reports allow-list membership for a venue address.
func (s *Store) SwapTarget(addr [20]byte) (bool, error) {
	return s.flag(bucketTargets, addr)
}

// SetSwapTarget updates allow-list membership for a venue address.
func (s *Store) SetSwapTarget(addr [20]byte, enabled bool) error {
	return s.setFlag(bucketTargets, addr, enabled)
}

// ValidSigner reports membership in the quote co-signer allow-list.
func (s *Store) ValidSigner(addr [20]byte) (bool, error) {
	return s.flag(bucketSigners, addr)
}

// SetValidSigner updates membership in the quote co-signer allow-list.
func (s *Store) SetValidSigner(addr [20]byte, enabled bool) error {
	return s.setFlag(bucketSigners, addr, enabled)
}

// QuoteNonceUsed reports whether the signer's nonce was already burned.
func (s *Store) QuoteNonceUsed(signer [20]byte, nonce [32]byte) (bool, error) {
	var used bool
	err := s.db.View(func(tx *bolt.Tx) error {
		used = tx.Bucket(bucketNonces).Get(nonceKey(signer, nonce)) != nil
		return nil
	})
	return used, err
}

// MarkQuoteNonce burns the signer's nonce.
func (s *Store) MarkQuoteNonce(signer [20]byte, nonce [32]byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNonces).Put(nonceKey(signer, nonce), []byte{1})
	})
}

func (s *Store) flag(bucket []byte, addr [20]byte) (bool, error) {
	var enabled bool
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucket).Get(addr[:])
		enabled = len(raw) == 1 && raw[0] == 1
		return nil
	})
	return enabled, err
}

func (s *Store) setFlag(bucket []byte, addr [20]byte, enabled bool) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if !enabled {
			return b.Delete(addr[:])
		}
		return b.Put(addr[:], []byte{1})
	})
}

func nonceKey(signer [20]byte, nonce [32]byte) []byte {
	key := make([]byte, 0, 52)
	key = append(key, signer[:]...)
	key = append(key, nonce[:]...)
	return key
}
