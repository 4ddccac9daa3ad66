package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// JSONStore keeps every level in a single JSON file.
type JSONStore struct {
	filePath string
	mutex    sync.RWMutex
	levels   map[string]Record
	closed   bool
}

// jsonFile is the on-disk layout of a JSONStore.
type jsonFile struct {
	Levels map[string]Record `json:"levels"`
}

// NewJSONStore opens the store at filePath, creating the file if it does not exist.
func NewJSONStore(filePath string) (*JSONStore, error) {
	js := &JSONStore{
		filePath: filePath,
		levels:   make(map[string]Record),
	}

	content, err := os.ReadFile(filePath)
	switch {
	case err == nil:
		var f jsonFile
		if err := json.Unmarshal(content, &f); err != nil {
			return nil, fmt.Errorf("failed to load JSON store %s: %w", filePath, err)
		}
		if f.Levels != nil {
			js.levels = f.Levels
		}
	case os.IsNotExist(err):
		if err := js.flush(); err != nil {
			return nil, fmt.Errorf("failed to create JSON store %s: %w", filePath, err)
		}
	default:
		return nil, fmt.Errorf("failed to open JSON store %s: %w", filePath, err)
	}

	return js, nil
}

// flush writes all levels to disk via a temp file and rename. Caller holds the lock.
func (js *JSONStore) flush() error {
	data, err := json.MarshalIndent(jsonFile{Levels: js.levels}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(js.filePath), ".levels-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), js.filePath)
}

// Save stores data under name.
func (js *JSONStore) Save(ctx context.Context, name, data string) (Record, error) {
	_, span := startSpan(ctx, "save", "json", name)
	defer span.End()

	if name == "" {
		return Record{}, ErrEmptyName
	}

	js.mutex.Lock()
	defer js.mutex.Unlock()

	if js.closed {
		return Record{}, ErrClosed
	}

	var prev *Record
	if r, ok := js.levels[name]; ok {
		prev = &r
	}
	rec := newRecord(prev, name, data)
	js.levels[name] = rec

	if err := js.flush(); err != nil {
		// Keep memory consistent with disk
		if prev != nil {
			js.levels[name] = *prev
		} else {
			delete(js.levels, name)
		}
		span.RecordError(err)
		return Record{}, fmt.Errorf("failed to save level %s: %w", name, err)
	}
	return rec, nil
}

// Load returns the level saved under name.
func (js *JSONStore) Load(ctx context.Context, name string) (Record, error) {
	_, span := startSpan(ctx, "load", "json", name)
	defer span.End()

	js.mutex.RLock()
	defer js.mutex.RUnlock()

	if js.closed {
		return Record{}, ErrClosed
	}
	rec, ok := js.levels[name]
	if !ok {
		return Record{}, fmt.Errorf("level %s: %w", name, ErrNotFound)
	}
	return rec, nil
}

// List returns all level names in sorted order.
func (js *JSONStore) List(ctx context.Context) ([]string, error) {
	js.mutex.RLock()
	defer js.mutex.RUnlock()

	if js.closed {
		return nil, ErrClosed
	}
	names := make([]string, 0, len(js.levels))
	for name := range js.levels {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Delete removes the level saved under name.
func (js *JSONStore) Delete(ctx context.Context, name string) error {
	js.mutex.Lock()
	defer js.mutex.Unlock()

	if js.closed {
		return ErrClosed
	}
	rec, ok := js.levels[name]
	if !ok {
		return fmt.Errorf("level %s: %w", name, ErrNotFound)
	}
	delete(js.levels, name)
	if err := js.flush(); err != nil {
		js.levels[name] = rec
		return fmt.Errorf("failed to delete level %s: %w", name, err)
	}
	return nil
}

// Close marks the store closed. Data is already on disk after every write.
func (js *JSONStore) Close() error {
	js.mutex.Lock()
	defer js.mutex.Unlock()
	js.closed = true
	return nil
}
