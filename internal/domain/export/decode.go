package export

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeCanonical
	ShapeNested
)

func (s Shape) String() string {
	switch s {
	case ShapeCanonical:
		return "canonical"
	case ShapeNested:
		return "nested"
	default:
		return "unknown"
	}
}

// Document is a decoded export tagged with the shape it arrived in. Exactly
// one of Canonical or Nested is populated unless Shape is ShapeUnknown.
type Document struct {
	Shape     Shape
	Header    Header
	Canonical Payload
	Nested    NestedPayload
}

// Header holds the top-level fields both shapes share.
type Header struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Mode      string
	Sport     string
}

// shapeProbe decodes only enough to tell the two shapes apart. Array
// elements decode into empty structs so their contents are skipped.
type shapeProbe struct {
	CanonicalID  string      `json:"_id"`
	NestedID     string      `json:"id"`
	Name         string      `json:"name"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	Mode         string      `json:"mode"`
	Sport        string      `json:"sport"`
	Qualifying   *[]struct{} `json:"qualifying"`
	Eliminations *[]struct{} `json:"eliminations"`
	Disciplines  *[]struct{} `json:"disciplines"`
}

// Decode parses a raw export. Malformed JSON is an error; a well-formed
// document of neither shape is not.
func Decode(raw []byte) (Document, error) {
	var probe shapeProbe
	if err := sonic.Unmarshal(raw, &probe); err != nil {
		return Document{}, fmt.Errorf("decode export: %w", err)
	}

	doc := Document{Header: Header{
		ID:        probe.CanonicalID,
		Name:      probe.Name,
		CreatedAt: probe.CreatedAt,
		UpdatedAt: probe.UpdatedAt,
		Mode:      probe.Mode,
		Sport:     probe.Sport,
	}}
	if doc.Header.ID == "" {
		doc.Header.ID = probe.NestedID
	}

	switch {
	case probe.Qualifying != nil || probe.Eliminations != nil:
		doc.Shape = ShapeCanonical
		if err := sonic.Unmarshal(raw, &doc.Canonical); err != nil {
			return Document{}, fmt.Errorf("decode canonical export: %w", err)
		}
	case probe.Disciplines != nil:
		doc.Shape = ShapeNested
		if err := sonic.Unmarshal(raw, &doc.Nested); err != nil {
			return Document{}, fmt.Errorf("decode nested export: %w", err)
		}
	}
	return doc, nil
}

// DecodePayload reads a payload previously written by Encode.
func DecodePayload(blob []byte) (Payload, error) {
	var p Payload
	if len(blob) == 0 {
		return p, nil
	}
	if err := sonic.Unmarshal(blob, &p); err != nil {
		return Payload{}, fmt.Errorf("decode stored payload: %w", err)
	}
	return p, nil
}
