package dashboard

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// CatalogManifest models a YAML manifest describing catalog entries.
type CatalogManifest struct {
	Version string          `json:"version" yaml:"version"`
	Name    string          `json:"name,omitempty" yaml:"name,omitempty"`
	Widgets []ManifestEntry `json:"widgets" yaml:"widgets"`
	Source  string          `json:"-" yaml:"-"`
}

// ManifestEntry is a single catalog entry plus bookkeeping metadata.
type ManifestEntry struct {
	Entry       CatalogEntry `json:"entry" yaml:"entry"`
	Maintainers []string     `json:"maintainers,omitempty" yaml:"maintainers,omitempty"`
	Tags        []string     `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// LoadManifestFile reads a manifest from disk and registers its entries.
func (c *Catalog) LoadManifestFile(path string) (*CatalogManifest, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := c.LoadManifest(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifest registers the entries of a decoded manifest.
func (c *Catalog) LoadManifest(doc *CatalogManifest) error {
	if doc == nil {
		return fmt.Errorf("dashboard: manifest document is nil")
	}
	for _, widget := range doc.Widgets {
		if err := c.Register(widget.Entry); err != nil {
			return fmt.Errorf("dashboard: register widget %s from %s: %w", widget.Entry.ID, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file from disk without registering it.
func ReadManifest(path string) (*CatalogManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*CatalogManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc CatalogManifest
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeManifest writes the manifest as YAML.
func EncodeManifest(w io.Writer, doc *CatalogManifest) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("dashboard: write manifest: %w", err)
	}
	return encoder.Close()
}

// Validate ensures the manifest satisfies required fields.
func (doc *CatalogManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Widgets))
	for idx, widget := range doc.Widgets {
		entry := widget.Entry
		if entry.ID == "" {
			return fmt.Errorf("dashboard: manifest widget at index %d is missing entry.id", idx)
		}
		if entry.Title == "" {
			return fmt.Errorf("dashboard: manifest widget %s missing entry.title", entry.ID)
		}
		if entry.DefaultLayout.W <= 0 || entry.DefaultLayout.H <= 0 {
			return fmt.Errorf("dashboard: manifest widget %s needs a positive defaultLayout", entry.ID)
		}
		switch entry.Class {
		case "", ClassChart, ClassEmbed:
		default:
			return fmt.Errorf("dashboard: manifest widget %s has unknown class %q", entry.ID, entry.Class)
		}
		if _, exists := seen[entry.ID]; exists {
			return fmt.Errorf("dashboard: manifest duplicates widget id %s", entry.ID)
		}
		seen[entry.ID] = struct{}{}
	}
	return nil
}
