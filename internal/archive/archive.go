// Package archive keeps a read-only record of every completed match for the
// consumers that compute standings and awards.
//
// Records are JSON data files written through github.com/c2FmZQ/storage, so
// they are compressed and, when a passphrase is configured, encrypted with a
// master key kept next to the data.
package archive

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/c2FmZQ/storage"
	"github.com/c2FmZQ/storage/crypto"
)

const (
	masterKeyFile = "master.key"
	matchesDir    = "matches"
)

// ErrEncryptedWithoutKey is returned when the directory holds a master key
// but no passphrase was given.
var ErrEncryptedWithoutKey = errors.New("archive is encrypted but no passphrase was given")

// Archive stores match records under a directory.
type Archive struct {
	dir     string
	storage *storage.Storage
	mu      sync.Map // match id -> *sync.Mutex
}

// Open opens or creates an archive in dir. A non-empty passphrase unlocks the
// master key, creating it on first use; an empty passphrase stores records
// unencrypted and refuses a directory that already has a key.
func Open(dir, passphrase string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Join(dir, matchesDir), 0o700); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}

	keyFile := filepath.Join(dir, masterKeyFile)
	var masterKey crypto.MasterKey
	if passphrase != "" {
		mk, err := crypto.ReadMasterKey([]byte(passphrase), keyFile)
		switch {
		case err == nil:
			slog.Debug("loaded archive master key", "dir", dir)
		case os.IsNotExist(err):
			slog.Info("initializing archive master key", "dir", dir)
			if mk, err = crypto.CreateMasterKey(); err != nil {
				return nil, fmt.Errorf("create master key: %w", err)
			}
			if err := mk.Save([]byte(passphrase), keyFile); err != nil {
				return nil, fmt.Errorf("save master key: %w", err)
			}
		default:
			return nil, fmt.Errorf("read master key: %w", err)
		}
		masterKey = mk
	} else if _, err := os.Stat(keyFile); err == nil {
		return nil, fmt.Errorf("%s: %w", keyFile, ErrEncryptedWithoutKey)
	}

	return &Archive{dir: dir, storage: storage.New(dir, masterKey)}, nil
}

// Dir returns the archive directory.
func (a *Archive) Dir() string {
	return a.dir
}

func (a *Archive) lock(id string) func() {
	m, _ := a.mu.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func fileName(id string) string {
	return filepath.Join(matchesDir, url.PathEscape(id)+".json")
}

// Save writes a record, replacing any earlier one for the same match.
func (a *Archive) Save(rec Record) error {
	if rec.MatchID == "" {
		return errors.New("archive record needs a match id")
	}
	defer a.lock(rec.MatchID)()

	rec.SchemaVersion = SchemaVersion
	if err := a.storage.SaveDataFile(fileName(rec.MatchID), &rec); err != nil {
		return fmt.Errorf("storage.SaveDataFile: %w", err)
	}
	return nil
}

// Load reads a record. It returns os.ErrNotExist if the match was never
// archived or has been purged.
func (a *Archive) Load(id string) (Record, error) {
	var rec Record
	if err := a.storage.ReadDataFile(fileName(id), &rec); err != nil {
		if os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
			return Record{}, os.ErrNotExist
		}
		return Record{}, fmt.Errorf("ReadDataFile: %w", err)
	}
	if rec.SchemaVersion > SchemaVersion {
		return Record{}, fmt.Errorf("record %s has schema version %d, newer than %d", id, rec.SchemaVersion, SchemaVersion)
	}
	return rec, nil
}

// Purge removes a record. Purging a missing record is not an error.
func (a *Archive) Purge(id string) error {
	defer a.lock(id)()

	if err := os.Remove(filepath.Join(a.dir, fileName(id))); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not purge archive record: %w", err)
	}
	return nil
}

// List returns the archived match ids in sorted order.
func (a *Archive) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(a.dir, matchesDir))
	if err != nil {
		return nil, fmt.Errorf("read archive dir: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok {
			continue
		}
		id, err := url.PathUnescape(name)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
