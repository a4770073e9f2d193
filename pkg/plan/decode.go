package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrEmptyRoomID is returned when a room is declared without an id.
	ErrEmptyRoomID = errors.New("room ID must not be empty")

	// ErrDuplicateRoomID is returned when two rooms on the same floor
	// share an id. Room ids must be unique per floor.
	ErrDuplicateRoomID = errors.New("duplicate room ID")

	// ErrInvalidDirection is returned when a relative position uses a
	// direction outside the closed eight-value set.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidAlignment is returned when a relative position uses an
	// unknown alignment keyword.
	ErrInvalidAlignment = errors.New("invalid alignment")

	// ErrUnknownFormat is returned by ReadDocumentFile for file
	// extensions other than .json and .toml.
	ErrUnknownFormat = errors.New("unknown document format")
)

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument converts a Document to pretty-printed JSON bytes.
func MarshalDocument(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadDocument decodes a JSON document from r and validates its
// structure. Use [ReadDocumentFile] to pick the codec by file extension.
func ReadDocument(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := Validate(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadDocumentTOML decodes a TOML document from r and validates it.
func ReadDocumentTOML(r io.Reader) (*Document, error) {
	var d Document
	if _, err := toml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := Validate(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ReadDocumentFile reads a floorplan document from path, selecting the
// codec by extension (.json or .toml).
func ReadDocumentFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return ReadDocument(f)
	case ".toml":
		return ReadDocumentTOML(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// WriteDocumentFile writes a Document to a JSON file.
// The file is created with 0644 permissions.
func WriteDocumentFile(d *Document, path string) error {
	data, err := MarshalDocument(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// =============================================================================
// Structural Validation
// =============================================================================

// Validate checks structural constraints that make a document usable at
// all: non-empty unique room ids per floor and well-formed direction and
// alignment keywords. Semantic problems (missing references, cycles, a
// bad default unit) are the resolver's job and surface as diagnostics,
// not decode errors.
func Validate(d *Document) error {
	for fi := range d.Floors {
		f := &d.Floors[fi]
		seen := make(map[RoomID]struct{}, len(f.Rooms))
		for _, r := range f.Rooms {
			if r.ID == "" {
				return fmt.Errorf("floor %q: %w", f.ID, ErrEmptyRoomID)
			}
			if _, dup := seen[r.ID]; dup {
				return fmt.Errorf("floor %q: %w: %s", f.ID, ErrDuplicateRoomID, r.ID)
			}
			seen[r.ID] = struct{}{}

			if p := r.Position; p != nil {
				if !p.Direction.Valid() {
					return fmt.Errorf("room %s: %w: %q", r.ID, ErrInvalidDirection, string(p.Direction))
				}
				if !p.Alignment.Valid() {
					return fmt.Errorf("room %s: %w: %q", r.ID, ErrInvalidAlignment, string(p.Alignment))
				}
			}
		}
	}
	return nil
}
