// Package store persists the dashboard's JSON data files.
//
// Every file is written through a temp file and a rename so readers never
// observe a half-written document. Read-modify-write sequences inside this
// process serialize on a per-path lock.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Outcome describes what a load found on disk.
type Outcome int

const (
	// OK means the file existed and decoded cleanly.
	OK Outcome = iota
	// Empty means the file was missing or blank.
	Empty
	// Malformed means the content could not be decoded, fully or in part.
	Malformed
	// Unreadable means the file exists but could not be read.
	Unreadable
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Empty:
		return "empty"
	case Malformed:
		return "malformed"
	case Unreadable:
		return "unreadable"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ErrMalformed is returned by mutations that refuse to overwrite a file
// they could not decode.
var ErrMalformed = errors.New("store: refusing to overwrite malformed file")

// Store loads and saves a list of records.
type Store[T any] interface {
	Load() ([]T, Outcome, error)
	Save(items []T) error
	Update(fn func(items []T) ([]T, error)) error
}

// JSONFile keeps a JSON array of T in a single file.
type JSONFile[T any] struct {
	path string
}

func NewJSONFile[T any](path string) *JSONFile[T] {
	return &JSONFile[T]{path: path}
}

func (f *JSONFile[T]) Path() string { return f.path }

func (f *JSONFile[T]) Load() ([]T, Outcome, error) {
	var items []T
	outcome, err := ReadJSON(f.path, &items)
	if outcome != OK {
		return nil, outcome, err
	}
	return items, OK, nil
}

func (f *JSONFile[T]) Save(items []T) error {
	if items == nil {
		items = []T{}
	}
	return WriteJSON(f.path, items)
}

// Update runs fn against the current contents under the file's lock and
// saves whatever it returns. A malformed file is left untouched.
func (f *JSONFile[T]) Update(fn func(items []T) ([]T, error)) error {
	unlock := Lock(f.path)
	defer unlock()

	items, outcome, err := f.Load()
	switch outcome {
	case Malformed, Unreadable:
		return fmt.Errorf("%w %s: %v", ErrMalformed, f.path, err)
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return f.Save(items)
}

// ReadJSON decodes the file at path into v.
func ReadJSON(path string, v interface{}) (Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty, nil
		}
		return Unreadable, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return Empty, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return Malformed, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return OK, nil
}

// WriteJSON encodes v with two-space indentation and replaces path atomically.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return WriteFileAtomic(path, append(data, '\n'), 0644)
}
