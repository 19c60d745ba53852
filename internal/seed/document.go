package seed

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"spirare/internal/content"
	"spirare/internal/services"
)

//go:embed default.yaml
var defaultDocument []byte

// FormatVersion is written to every backup. Documents without a version are
// read as version 1.
const FormatVersion = 1

// Document is the seed and backup format.
type Document struct {
	Version   int                        `yaml:"version"`
	CreatedAt time.Time                  `yaml:"createdAt,omitempty"`
	Structure *content.Structure         `yaml:"structure,omitempty"`
	Pools     []content.BasePool         `yaml:"pools,omitempty"`
	Themes    []content.Theme            `yaml:"themes,omitempty"`
	Songs     []content.Song             `yaml:"songs,omitempty"`
	Metronome *content.MetronomeSettings `yaml:"metronome,omitempty"`
}

// Default returns the embedded seed document.
func Default() (Document, error) {
	return Parse(defaultDocument)
}

// Load reads a document from path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a YAML document, rejecting unknown fields, then normalizes
// and validates it.
func Parse(data []byte) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return Document{}, services.Wrap(services.ErrValidation, "seed", "parse", "decode yaml", err)
	}
	if doc.Version == 0 {
		doc.Version = FormatVersion
	}
	if doc.Version != FormatVersion {
		return Document{}, services.Wrap(services.ErrValidation, "seed", "parse",
			fmt.Sprintf("unsupported document version %d", doc.Version), nil)
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Marshal encodes doc as YAML with two-space indentation.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode seed document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode seed document: %w", err)
	}
	return buf.Bytes(), nil
}

// Normalize canonicalizes every record in place.
func (d *Document) Normalize() {
	for i := range d.Pools {
		d.Pools[i].Normalize()
	}
	for i := range d.Themes {
		d.Themes[i].Normalize()
	}
	for i := range d.Songs {
		d.Songs[i].Normalize()
	}
	if d.Metronome != nil {
		clamped := d.Metronome.Clamped()
		d.Metronome = &clamped
	}
}

// Validate checks every record and rejects duplicate keys.
func (d Document) Validate() error {
	if d.Structure != nil {
		if err := d.Structure.Validate(); err != nil {
			return err
		}
	}
	slots := make(map[string]bool, len(d.Pools))
	for _, pool := range d.Pools {
		if err := pool.Validate(); err != nil {
			return err
		}
		key := string(pool.Stage) + "/" + pool.Practice
		if slots[key] {
			return duplicate("pool", key)
		}
		slots[key] = true
	}
	categories := make(map[string]bool, len(d.Themes))
	for _, theme := range d.Themes {
		if err := theme.Validate(); err != nil {
			return err
		}
		if categories[theme.Category] {
			return duplicate("theme", theme.Category)
		}
		categories[theme.Category] = true
	}
	ids := make(map[string]bool, len(d.Songs))
	for _, song := range d.Songs {
		if err := song.Validate(); err != nil {
			return err
		}
		if song.ID == "" {
			continue
		}
		if ids[song.ID] {
			return duplicate("song", song.ID)
		}
		ids[song.ID] = true
	}
	return nil
}

// Empty reports whether the document carries no content at all.
func (d Document) Empty() bool {
	return d.Structure == nil && len(d.Pools) == 0 && len(d.Themes) == 0 && len(d.Songs) == 0 && d.Metronome == nil
}

func duplicate(kind, key string) error {
	return services.Wrap(services.ErrValidation, "seed", "validate", fmt.Sprintf("duplicate %s %q", kind, key), nil)
}
