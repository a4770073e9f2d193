package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/observability"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
)

// Decode reads and validates the floorplan document described by opts.
// It returns the document together with its canonical JSON encoding,
// which downstream stages hash for cache keys.
func Decode(ctx context.Context, opts Options) (*plan.Document, []byte, error) {
	if err := opts.ValidateForDecode(); err != nil {
		return nil, nil, err
	}

	source, format := decodeSource(opts)
	start := time.Now()
	observability.Pipeline().OnDecodeStart(ctx, source, format)

	doc, err := decodeDocument(opts)
	if err == nil {
		err = plan.Validate(doc)
	}
	if err != nil {
		observability.Pipeline().OnDecodeComplete(ctx, source, format, 0, time.Since(start), err)
		return nil, nil, err
	}

	canonical, err := plan.MarshalDocument(doc)
	if err != nil {
		observability.Pipeline().OnDecodeComplete(ctx, source, format, 0, time.Since(start), err)
		return nil, nil, fmt.Errorf("encode document: %w", err)
	}

	observability.Pipeline().OnDecodeComplete(ctx, source, format, countRooms(doc), time.Since(start), nil)
	return doc, canonical, nil
}

func decodeDocument(opts Options) (*plan.Document, error) {
	switch {
	case opts.Document != nil:
		return opts.Document, nil
	case len(opts.Data) > 0:
		if opts.Format == "toml" {
			return plan.ReadDocumentTOML(bytes.NewReader(opts.Data))
		}
		return plan.ReadDocument(bytes.NewReader(opts.Data))
	default:
		return plan.ReadDocumentFile(opts.Source)
	}
}

func decodeSource(opts Options) (source, format string) {
	switch {
	case opts.Document != nil:
		return "<document>", "native"
	case len(opts.Data) > 0:
		return "<data>", opts.Format
	default:
		return opts.Source, ""
	}
}

func countRooms(doc *plan.Document) int {
	n := 0
	for _, f := range doc.Floors {
		n += len(f.Rooms)
	}
	return n
}
