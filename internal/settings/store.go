// Package settings persists the viewer's preferences in a BoltDB file and
// exposes them as a typed, observable AppSettings record.
package settings

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	appName           = "viewonly"
	dbFileName        = "viewonly_prefs.db"
	PreferencesBucket = "Preferences"

	openTimeout = 2 * time.Second
)

// LoggerFunc defines a function signature for logging messages.
// This allows the ui package to provide its logging mechanism.
type LoggerFunc func(message string)

// Store is a key/value preference store. Values are JSON encoded.
type Store struct {
	db     *bolt.DB
	path   string
	logger LoggerFunc

	mu        sync.Mutex
	listeners []func(key string)
}

// DefaultDBPath returns the preference file inside the user config
// directory, creating the directory if needed.
func DefaultDBPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config dir: %w", err)
	}
	appConfigDir := filepath.Join(configDir, appName)
	if err := os.MkdirAll(appConfigDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", appConfigDir, err)
	}
	return filepath.Join(appConfigDir, dbFileName), nil
}

// OpenStore creates or opens the preference database at dbPath. An empty
// dbPath selects DefaultDBPath, falling back to the current directory.
func OpenStore(dbPath string, logger LoggerFunc) (*Store, error) {
	if dbPath == "" {
		p, err := DefaultDBPath()
		if err != nil {
			log.Printf("Warning: %v. Using current dir.", err)
			p = dbFileName
		}
		dbPath = p
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", dbPath, err)
	}

	// another process (the GUI or the CLI) may hold the file lock
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open preference database %s: %w", dbPath, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(PreferencesBucket)); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", PreferencesBucket, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, path: dbPath, logger: logger}
	s.logMessage("Using preference database at: %s", dbPath)
	return s, nil
}

func (s *Store) logMessage(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// AddChangeListener registers fn to be called with the key after every
// committed write.
func (s *Store) AddChangeListener(fn func(key string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) changed(key string) {
	s.mu.Lock()
	listeners := append([]func(string){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(key)
	}
}

// Get decodes the value stored under key into out and reports whether the
// key existed. out is left untouched when it did not.
func (s *Store) Get(key string, out any) (bool, error) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(PreferencesBucket))
		data := b.Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode preference '%s': %w", key, err)
		}
		return nil
	})
	return found, err
}

// Set stores value under key.
func (s *Store) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode preference '%s': %w", key, err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(PreferencesBucket)).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store preference '%s': %w", key, err)
	}
	s.changed(key)
	return nil
}

// Delete removes key; a missing key is not an error.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(PreferencesBucket)).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("failed to delete preference '%s': %w", key, err)
	}
	s.changed(key)
	return nil
}

// Keys lists the stored keys in byte order.
func (s *Store) Keys() ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(PreferencesBucket)).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	return keys, err
}

// UpdateIDSet adds or removes id in the integer set stored under key inside
// a single transaction. It reports whether the set changed. An empty set
// deletes the key.
func (s *Store) UpdateIDSet(key string, id int64, add bool) (bool, error) {
	changed := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(PreferencesBucket))
		current, err := decodeIDs(bucket.Get([]byte(key)))
		if err != nil {
			return fmt.Errorf("failed to decode set for key '%s': %w", key, err)
		}

		var updated []int64
		if add {
			updated, changed = addID(current, id)
		} else {
			updated = removeID(current, id)
			changed = len(updated) != len(current)
		}
		if !changed {
			return nil
		}
		if len(updated) == 0 {
			return bucket.Delete([]byte(key))
		}
		data, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to encode set for key '%s': %w", key, err)
		}
		return bucket.Put([]byte(key), data)
	})
	if err != nil {
		return false, err
	}
	if changed {
		s.changed(key)
	}
	return changed, nil
}

func decodeIDs(data []byte) ([]int64, error) {
	if data == nil {
		return []int64{}, nil
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, err
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// addID inserts id keeping the slice sorted. Returns false if present.
func addID(ids []int64, id int64) ([]int64, bool) {
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	if i < len(ids) && ids[i] == id {
		return ids, false
	}
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids, true
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
