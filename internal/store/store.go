// Package store persists handler profiles and finished-match results in
// a local bbolt database. Profiles are keyed by handler name; results
// are an append-only log keyed by insertion sequence.
package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/ValleyOfWalls/wildhand/internal/card"
)

const (
	profileBucket = "profiles"
	resultBucket  = "results"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("store: record not found")

// Profile is a handler's persistent identity: the species they run, the
// decks they have drafted, and their lifetime record. Decks hold card
// identifiers only; names are resolved through a registry at load time.
type Profile struct {
	Name        string    `json:"name"`
	PetSpecies  string    `json:"pet_species"`
	HandlerDeck []card.ID `json:"handler_deck"`
	PetDeck     []card.ID `json:"pet_deck"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Result is one finished match. A draw carries both names with Draw set
// and counts toward neither profile.
type Result struct {
	MatchID string    `json:"match_id,omitempty"`
	Winner  string    `json:"winner"`
	Loser   string    `json:"loser"`
	Draw    bool      `json:"draw,omitempty"`
	Rounds  int       `json:"rounds,omitempty"`
	EndedAt time.Time `json:"ended_at"`
}

// Store provides a bbolt-backed profile and result store.
type Store struct {
	db *bbolt.DB
}

// Open opens the store at the provided path, creating the database file
// and its buckets as needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{profileBucket, resultBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// SaveProfile persists p keyed by its name, stamping UpdatedAt.
func (s *Store) SaveProfile(ctx context.Context, p Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("store is not configured")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("profile name is required")
	}

	p.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(profileBucket))
		if bucket == nil {
			return fmt.Errorf("profile bucket is missing")
		}
		return bucket.Put([]byte(p.Name), payload)
	})
}

// Profile fetches the profile stored under name.
func (s *Store) Profile(ctx context.Context, name string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	if s == nil || s.db == nil {
		return Profile{}, fmt.Errorf("store is not configured")
	}
	if strings.TrimSpace(name) == "" {
		return Profile{}, fmt.Errorf("profile name is required")
	}

	var p Profile
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(profileBucket))
		if bucket == nil {
			return fmt.Errorf("profile bucket is missing")
		}
		payload := bucket.Get([]byte(name))
		if payload == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("unmarshal profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Profiles returns every stored profile in name order.
func (s *Store) Profiles(ctx context.Context) ([]Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store is not configured")
	}

	var out []Profile
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(profileBucket))
		if bucket == nil {
			return fmt.Errorf("profile bucket is missing")
		}
		return bucket.ForEach(func(_, payload []byte) error {
			var p Profile
			if err := json.Unmarshal(payload, &p); err != nil {
				return fmt.Errorf("unmarshal profile: %w", err)
			}
			out = append(out, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SaveResult appends r to the result log and updates the win/loss
// counters of any profiles the named handlers have. Handlers without a
// stored profile still appear in the log.
func (s *Store) SaveResult(ctx context.Context, r Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("store is not configured")
	}
	if strings.TrimSpace(r.Winner) == "" || strings.TrimSpace(r.Loser) == "" {
		return fmt.Errorf("result needs both handler names")
	}

	if r.EndedAt.IsZero() {
		r.EndedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(resultBucket))
		if bucket == nil {
			return fmt.Errorf("result bucket is missing")
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("next result sequence: %w", err)
		}
		if err := bucket.Put(resultKey(seq), payload); err != nil {
			return fmt.Errorf("put result: %w", err)
		}
		if r.Draw {
			return nil
		}
		profiles := tx.Bucket([]byte(profileBucket))
		if profiles == nil {
			return fmt.Errorf("profile bucket is missing")
		}
		if err := bumpCounter(profiles, r.Winner, true, r.EndedAt); err != nil {
			return err
		}
		return bumpCounter(profiles, r.Loser, false, r.EndedAt)
	})
}

// RecordResult appends a minimal result row. It satisfies the match
// layer's result recorder.
func (s *Store) RecordResult(winner, loser string, draw bool) error {
	return s.SaveResult(context.Background(), Result{Winner: winner, Loser: loser, Draw: draw})
}

// Results returns the recorded results in the order they finished.
func (s *Store) Results(ctx context.Context) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store is not configured")
	}

	var out []Result
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(resultBucket))
		if bucket == nil {
			return fmt.Errorf("result bucket is missing")
		}
		return bucket.ForEach(func(_, payload []byte) error {
			var r Result
			if err := json.Unmarshal(payload, &r); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
			out = append(out, r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func bumpCounter(bucket *bbolt.Bucket, name string, won bool, at time.Time) error {
	payload := bucket.Get([]byte(name))
	if payload == nil {
		return nil
	}
	var p Profile
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("unmarshal profile %s: %w", name, err)
	}
	if won {
		p.Wins++
	} else {
		p.Losses++
	}
	p.UpdatedAt = at
	out, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile %s: %w", name, err)
	}
	return bucket.Put([]byte(name), out)
}

// Sequence keys sort results by insertion order.
func resultKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
