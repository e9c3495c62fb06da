// Package cache memoizes finished solves in a local bbolt database, keyed
// on a hash of the inputs that produced them, so that re-resolving an
// unchanged manifest against an unchanged Index is a lookup instead of a
// fresh search. This generalizes the bolt-backed source cache golang-dep's
// internal/gps package kept for fetched repository metadata to this
// package's own cache subject: finished InstallPlans rather than source
// history.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/pkgsolve/modsolve/solver"
)

var plansBucket = []byte("solve-plans")

// Store is a bbolt-backed cache of InstallPlans. The zero value is not
// usable; construct one with Open.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bbolt database at path and ensures
// its plans bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache database %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(plansBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initializing cache bucket")
	}
	return &Store{db: db}, nil
}

// Close releases the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key hashes a solve's inputs, its targets, option set, and an opaque
// fingerprint of the Index and constraint model the caller has already
// computed, into a stable cache key.
func Key(targets []solver.PackageDependency, opts solver.Options, indexFingerprint string) string {
	h := sha256.New()
	fmt.Fprintf(h, "idx=%s\n", indexFingerprint)
	for _, t := range targets {
		fmt.Fprintf(h, "target=%s range=%s component=%s\n", t.Name, t.Range.String(), t.Component)
	}
	fmt.Fprintf(h, "opts=%+v\n", opts)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached InstallPlan for key, if present.
func (s *Store) Get(key string) (*solver.InstallPlan, bool, error) {
	var plan *solver.InstallPlan
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(plansBucket).Get([]byte(key))
		if raw == nil {
			return nil
		}
		dec := gob.NewDecoder(bytes.NewReader(raw))
		p := &solver.InstallPlan{}
		if err := dec.Decode(p); err != nil {
			return errors.Wrap(err, "decoding cached plan")
		}
		plan = p
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return plan, plan != nil, nil
}

// Put stores plan under key, overwriting any prior entry.
func (s *Store) Put(key string, plan *solver.InstallPlan) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(plan); err != nil {
		return errors.Wrap(err, "encoding plan for cache")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(plansBucket).Put([]byte(key), buf.Bytes())
	})
}
