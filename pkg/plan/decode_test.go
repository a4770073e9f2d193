package plan

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleJSON = `{
  "title": "Bungalow",
  "default_unit": "m",
  "floors": [
    {
      "id": "ground",
      "rooms": [
        {
          "id": "living",
          "at": {"x": {"magnitude": 0}, "z": {"magnitude": 0}},
          "size": {"width": {"magnitude": 6}, "depth": {"magnitude": 6}}
        },
        {
          "id": "kitchen",
          "position": {
            "direction": "right-of",
            "reference": "living",
            "gap": {"magnitude": 2},
            "alignment": "bottom"
          },
          "size": {"width": {"magnitude": 4, "unit": "m"}, "depth": {"magnitude": 3}}
        }
      ]
    }
  ]
}`

const sampleTOML = `
title = "Bungalow"
default_unit = "ft"

[[floors]]
id = "ground"

  [[floors.rooms]]
  id = "living"
  at = { x = { magnitude = 0.0 }, z = { magnitude = 0.0 } }
  size = { width = { magnitude = 10.0 }, depth = { magnitude = 8.0 } }

  [[floors.rooms]]
  id = "porch"
  position = { direction = "below", reference = "living", gap = { magnitude = 1.0 } }
  size = { width = { magnitude = 6.0 }, depth = { magnitude = 4.0 } }
`

func TestReadDocumentJSON(t *testing.T) {
	d, err := ReadDocument(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadDocument() error = %v", err)
	}

	if d.Title != "Bungalow" || d.DefaultUnit != "m" {
		t.Errorf("header = %q/%q, want Bungalow/m", d.Title, d.DefaultUnit)
	}
	if len(d.Floors) != 1 || len(d.Floors[0].Rooms) != 2 {
		t.Fatalf("decoded %d floors, want 1 with 2 rooms", len(d.Floors))
	}

	kitchen, ok := d.Floors[0].Room("kitchen")
	if !ok {
		t.Fatal("kitchen not decoded")
	}
	p := kitchen.Position
	if p == nil || p.Direction != RightOf || p.Reference != "living" {
		t.Errorf("kitchen position = %+v", p)
	}
	if p.Gap.Magnitude != 2 || p.Alignment != AlignBottom {
		t.Errorf("kitchen gap/alignment = %v/%q", p.Gap.Magnitude, p.Alignment)
	}
}

func TestReadDocumentTOML(t *testing.T) {
	d, err := ReadDocumentTOML(strings.NewReader(sampleTOML))
	if err != nil {
		t.Fatalf("ReadDocumentTOML() error = %v", err)
	}
	if d.DefaultUnit != "ft" {
		t.Errorf("DefaultUnit = %q, want ft", d.DefaultUnit)
	}
	porch, ok := d.Floors[0].Room("porch")
	if !ok {
		t.Fatal("porch not decoded")
	}
	if porch.Position == nil || porch.Position.Direction != Below {
		t.Errorf("porch position = %+v", porch.Position)
	}
}

func TestReadDocumentFileByExtension(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "plan.json")
	if err := os.WriteFile(jsonPath, []byte(sampleJSON), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadDocumentFile(jsonPath); err != nil {
		t.Errorf("ReadDocumentFile(json) error = %v", err)
	}

	tomlPath := filepath.Join(dir, "plan.toml")
	if err := os.WriteFile(tomlPath, []byte(sampleTOML), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadDocumentFile(tomlPath); err != nil {
		t.Errorf("ReadDocumentFile(toml) error = %v", err)
	}

	badPath := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(badPath, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadDocumentFile(badPath); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("ReadDocumentFile(yaml) error = %v, want ErrUnknownFormat", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	d, err := ReadDocument(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalDocument(d)
	if err != nil {
		t.Fatalf("MarshalDocument() error = %v", err)
	}
	again, err := ReadDocument(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("re-decode error = %v", err)
	}
	if len(again.Floors) != len(d.Floors) {
		t.Errorf("round trip lost floors: %d != %d", len(again.Floors), len(d.Floors))
	}
}

func TestValidate(t *testing.T) {
	room := func(id string) Room {
		return Room{ID: RoomID(id), At: &Coordinate{}}
	}

	tests := []struct {
		name    string
		doc     Document
		wantErr error
	}{
		{
			name: "valid",
			doc: Document{Floors: []Floor{{ID: "g", Rooms: []Room{
				room("a"),
				{ID: "b", Position: &Relative{Direction: RightOf, Reference: "a"}},
			}}}},
			wantErr: nil,
		},
		{
			name:    "empty room id",
			doc:     Document{Floors: []Floor{{ID: "g", Rooms: []Room{{}}}}},
			wantErr: ErrEmptyRoomID,
		},
		{
			name: "duplicate room id",
			doc: Document{Floors: []Floor{{ID: "g", Rooms: []Room{
				room("a"), room("a"),
			}}}},
			wantErr: ErrDuplicateRoomID,
		},
		{
			name: "bad direction",
			doc: Document{Floors: []Floor{{ID: "g", Rooms: []Room{
				{ID: "a", Position: &Relative{Direction: "north-of", Reference: "b"}},
			}}}},
			wantErr: ErrInvalidDirection,
		},
		{
			name: "bad alignment",
			doc: Document{Floors: []Floor{{ID: "g", Rooms: []Room{
				{ID: "a", Position: &Relative{Direction: RightOf, Reference: "b", Alignment: "middle"}},
			}}}},
			wantErr: ErrInvalidAlignment,
		},
		{
			name: "same id on different floors ok",
			doc: Document{Floors: []Floor{
				{ID: "g", Rooms: []Room{room("a")}},
				{ID: "first", Rooms: []Room{room("a")}},
			}},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.doc)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
