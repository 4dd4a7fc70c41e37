package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/planflow/pkg/domain"
)

var extensions = []string{".yaml", ".yml", ".json"}

// Loader implements ports.FlowLoader over a directory of flow documents.
// A flow named "householder" is read from householder.yaml, .yml or .json.
type Loader struct {
	Dir string
}

// NewLoader creates a loader reading from dir.
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = "."
	}
	return &Loader{Dir: dir}
}

// Load decodes the named flow.
func (l *Loader) Load(_ context.Context, name string) (*domain.Graph, error) {
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid flow name %q", name)
	}
	for _, ext := range extensions {
		path := filepath.Join(l.Dir, name+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read flow %s: %w", name, err)
		}
		doc, err := Parse(data, ext)
		if err != nil {
			return nil, fmt.Errorf("flow %s: %w", name, err)
		}
		return doc.Graph()
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, name)
}

// List returns the names of every flow document in the directory.
func (l *Loader) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}
	seen := make(map[string]struct{})
	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !isFlowExt(ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ReadFile decodes a single flow document from path.
func ReadFile(path string) (*domain.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc.Graph()
}

// Parse decodes a flow document. JSON is used for ".json", YAML otherwise.
func Parse(data []byte, ext string) (domain.Document, error) {
	var doc domain.Document
	var err error
	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to parse flow document: %w", err)
	}
	if len(doc.Nodes) == 0 {
		return domain.Document{}, fmt.Errorf("flow document has no nodes")
	}
	return doc, nil
}

func isFlowExt(ext string) bool {
	for _, e := range extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}
