package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/okian/adsim/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// decoder decodes a Document from r.
type decoder func(r io.Reader, doc *Document) error

// File loads a Document from disk.
type File struct {
	kind   string
	path   string
	decode decoder
}

// NewJSONFile returns a source reading a JSON document.
func NewJSONFile(path string) *File {
	return &File{kind: KindJSON, path: path, decode: func(r io.Reader, doc *Document) error {
		return json.NewDecoder(r).Decode(doc)
	}}
}

// NewYAMLFile returns a source reading a YAML document.
func NewYAMLFile(path string) *File {
	return &File{kind: KindYAML, path: path, decode: func(r io.Reader, doc *Document) error {
		return yaml.NewDecoder(r).Decode(doc)
	}}
}

func (f *File) String() string { return f.kind + ":" + f.path }

// Load reads and converts the document.
func (f *File) Load(ctx context.Context) (*model.Competition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", model.ErrConfiguration, f.path, err)
	}
	defer fh.Close()

	var doc Document
	if err := f.decode(fh, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrMalformed, f, err)
	}
	if doc.Name == "" {
		doc.Name = f.path
	}
	return doc.Competition()
}
