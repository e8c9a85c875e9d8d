package arraystore

import (
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/veffgo/codec"
)

const (
	// ManifestName is the blob holding the store layout.
	ManifestName = "manifest.json"
	// ManifestVersion is the layout version written by this package.
	ManifestVersion = 1

	chunkPrefix = "chunks/"
)

// Manifest describes the committed state of an array store.
type Manifest struct {
	Version     int         `json:"version"`
	ID          string      `json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Codec       string      `json:"codec"`
	Compression Compression `json:"compression"`
	Groups      []string    `json:"groups"`
	Leaves      []Leaf      `json:"leaves"`
}

// Leaf describes one growable dataset.
type Leaf struct {
	Path     string     `json:"path"`
	DType    DType      `json:"dtype"`
	Shape    []int      `json:"shape"`
	MaxShape []int      `json:"maxshape"` // -1 marks an unbounded axis
	Chunks   []ChunkRef `json:"chunks"`
}

// ChunkRef locates the rows [Offset, Offset+Rows) of a leaf.
type ChunkRef struct {
	Name   string `json:"name"`
	Offset int    `json:"offset"`
	Rows   int    `json:"rows"`
	Bytes  int    `json:"bytes"`
}

// Rows returns the length of the leading axis.
func (l *Leaf) Rows() int {
	if len(l.Shape) == 0 {
		return 0
	}
	return l.Shape[0]
}

// TrailingShape returns the fixed axes.
func (l *Leaf) TrailingShape() []int {
	if len(l.Shape) == 0 {
		return nil
	}
	return slices.Clone(l.Shape[1:])
}

func (l *Leaf) clone() *Leaf {
	c := *l
	c.Shape = slices.Clone(l.Shape)
	c.MaxShape = slices.Clone(l.MaxShape)
	c.Chunks = slices.Clone(l.Chunks)
	return &c
}

func newLeaf(path string, t *Tensor) *Leaf {
	shape := append([]int{0}, t.TrailingShape()...)
	maxShape := append([]int{-1}, t.TrailingShape()...)
	return &Leaf{Path: path, DType: t.DType(), Shape: shape, MaxShape: maxShape}
}

// MarshalText implements encoding.TextMarshaler.
func (c Compression) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Compression) UnmarshalText(b []byte) error {
	switch string(b) {
	case "none":
		*c = CompressionNone
	case "lz4":
		*c = CompressionLZ4
	case "zstd":
		*c = CompressionZSTD
	default:
		return fmt.Errorf("arraystore: unknown compression %q", b)
	}
	return nil
}

func decodeManifest(data []byte) (*Manifest, error) {
	// Every built-in codec reads and writes plain JSON.
	var m Manifest
	if err := codec.Default.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("arraystore: decode manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("arraystore: unsupported manifest version: %d (expected %d)", m.Version, ManifestVersion)
	}
	if _, ok := codec.ByName(m.Codec); !ok {
		return nil, fmt.Errorf("arraystore: unknown manifest codec %q", m.Codec)
	}
	return &m, nil
}
