package ontology

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/ontology.yaml
var defaultOntology []byte

type document struct {
	Nodes []Node `yaml:"nodes"`
	Links []Link `yaml:"links"`
}

// Default builds the ontology shipped with the binary.
func Default() (*Graph, error) {
	return Load(bytes.NewReader(defaultOntology))
}

func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ontology: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func Load(r io.Reader) (*Graph, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing ontology YAML: %w", err)
	}

	g, err := Build(doc.Nodes, doc.Links)
	if err != nil {
		return nil, fmt.Errorf("building ontology: %w", err)
	}
	return g, nil
}
