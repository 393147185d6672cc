// Package writer rewrites the version field of a manifest in place. It
// operates on yaml.Node trees so comments and document layout survive the
// round trip.
package writer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/helmup/domain"
)

const encoderIndent = 2

// Writer applies version updates to manifest files.
type Writer struct {
	fs afero.Fs
}

// New creates a writer operating on the given filesystem.
func New(fs afero.Fs) *Writer {
	return &Writer{fs: fs}
}

// Apply rewrites the version scalar addressed by the update's document
// index and field path. A path that no longer resolves is an error: the
// scanner produced it, so a mismatch means the file changed underneath.
func (w *Writer) Apply(update domain.VersionUpdate) error {
	dep := update.Dependency

	data, err := afero.ReadFile(w.fs, dep.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest %q: %w", dep.ManifestPath, err)
	}

	docs, err := decodeDocuments(data)
	if err != nil {
		return fmt.Errorf("failed to parse manifest %q: %w", dep.ManifestPath, err)
	}
	if dep.DocumentIndex < 0 || dep.DocumentIndex >= len(docs) {
		return fmt.Errorf(
			"manifest %q has no document %d", dep.ManifestPath, dep.DocumentIndex,
		)
	}

	target, err := resolvePath(docs[dep.DocumentIndex], dep.VersionPath)
	if err != nil {
		return fmt.Errorf(
			"failed to locate version field in %q (doc %d): %w",
			dep.ManifestPath, dep.DocumentIndex, err,
		)
	}
	if target.Kind != yaml.ScalarNode {
		return fmt.Errorf(
			"version field in %q (doc %d) is not a scalar",
			dep.ManifestPath, dep.DocumentIndex,
		)
	}

	style := target.Style
	target.SetString(update.NewVersion)
	target.Style = style

	encoded, err := encodeDocuments(docs)
	if err != nil {
		return fmt.Errorf("failed to re-encode manifest %q: %w", dep.ManifestPath, err)
	}

	if writeErr := afero.WriteFile(w.fs, dep.ManifestPath, encoded, 0o644); writeErr != nil {
		return fmt.Errorf("failed to write manifest %q: %w", dep.ManifestPath, writeErr)
	}
	return nil
}

func decodeDocuments(data []byte) ([]*yaml.Node, error) {
	var docs []*yaml.Node
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc yaml.Node
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

func encodeDocuments(docs []*yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(encoderIndent)
	for _, doc := range docs {
		if err := encoder.Encode(doc); err != nil {
			return nil, err
		}
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// resolvePath walks a document tree along the field path. Numeric path
// elements index sequence nodes; everything else looks up a mapping key.
func resolvePath(doc *yaml.Node, path []string) (*yaml.Node, error) {
	node := doc
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, errors.New("empty document")
		}
		node = node.Content[0]
	}

	for _, elem := range path {
		next, err := step(node, elem)
		if err != nil {
			return nil, err
		}
		node = next
	}
	return node, nil
}

func step(node *yaml.Node, elem string) (*yaml.Node, error) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == elem {
				return node.Content[i+1], nil
			}
		}
		return nil, fmt.Errorf("key %q not found", elem)
	case yaml.SequenceNode:
		index, err := strconv.Atoi(elem)
		if err != nil {
			return nil, fmt.Errorf("sequence index %q is not a number", elem)
		}
		if index < 0 || index >= len(node.Content) {
			return nil, fmt.Errorf("sequence index %d out of range", index)
		}
		return node.Content[index], nil
	default:
		return nil, fmt.Errorf("cannot descend into scalar with %q", elem)
	}
}
