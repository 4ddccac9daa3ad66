package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

const levelKeyPrefix = "level:"

// BadgerStore keeps levels in a BadgerDB directory, one key per level.
type BadgerStore struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerStore opens (or creates) a Badger database at dbPath.
func NewBadgerStore(dbPath string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", dbPath, err)
	}

	return &BadgerStore{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

func levelKey(name string) []byte {
	return []byte(levelKeyPrefix + name)
}

// getRecord reads a record inside an open transaction.
func getRecord(txn *badger.Txn, name string) (*Record, error) {
	item, err := txn.Get(levelKey(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("level %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode level %s: %w", name, err)
	}
	return &rec, nil
}

// Save stores data under name.
func (bs *BadgerStore) Save(ctx context.Context, name, data string) (Record, error) {
	_, span := startSpan(ctx, "save", "badger", name)
	defer span.End()

	if name == "" {
		return Record{}, ErrEmptyName
	}

	bs.mutex.RLock()
	defer bs.mutex.RUnlock()
	if !bs.isReady {
		return Record{}, ErrClosed
	}

	var rec Record
	err := bs.db.Update(func(txn *badger.Txn) error {
		prev, err := getRecord(txn, name)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		rec = newRecord(prev, name, data)

		value, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(levelKey(name), value)
	})
	if err != nil {
		span.RecordError(err)
		return Record{}, fmt.Errorf("failed to save level %s: %w", name, err)
	}
	return rec, nil
}

// Load returns the level saved under name.
func (bs *BadgerStore) Load(ctx context.Context, name string) (Record, error) {
	_, span := startSpan(ctx, "load", "badger", name)
	defer span.End()

	bs.mutex.RLock()
	defer bs.mutex.RUnlock()
	if !bs.isReady {
		return Record{}, ErrClosed
	}

	var rec *Record
	err := bs.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getRecord(txn, name)
		return err
	})
	if err != nil {
		return Record{}, err
	}
	return *rec, nil
}

// List returns all level names in key order.
func (bs *BadgerStore) List(ctx context.Context) ([]string, error) {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()
	if !bs.isReady {
		return nil, ErrClosed
	}

	names := make([]string, 0)
	prefix := []byte(levelKeyPrefix)
	err := bs.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().KeyCopy(nil))
			names = append(names, strings.TrimPrefix(key, levelKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list levels: %w", err)
	}
	return names, nil
}

// Delete removes the level saved under name.
func (bs *BadgerStore) Delete(ctx context.Context, name string) error {
	bs.mutex.RLock()
	defer bs.mutex.RUnlock()
	if !bs.isReady {
		return ErrClosed
	}

	return bs.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(levelKey(name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("level %s: %w", name, ErrNotFound)
			}
			return err
		}
		return txn.Delete(levelKey(name))
	})
}

// Close closes the database.
func (bs *BadgerStore) Close() error {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	if !bs.isReady {
		return nil
	}
	bs.isReady = false
	return bs.db.Close()
}
