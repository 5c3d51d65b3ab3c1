package schema

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadContentTypes reads a contenttypes.yml file: a top-level mapping of
// configuration key to content type definition. Mapping order is preserved
// so that multi-type scopes expand in configuration order. The slug of each
// type defaults to its key when not set explicitly.
func LoadContentTypes(path string) ([]ContentType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content types file %q: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}

	mapping, err := documentMapping(&root, path)
	if err != nil {
		return nil, err
	}

	types := make([]ContentType, 0, len(mapping.Content)/2)

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode := mapping.Content[i]
		valNode := mapping.Content[i+1]

		var ct ContentType
		if err := decodeStrict(valNode, &ct); err != nil {
			return nil, fmt.Errorf("content type %q: %w", keyNode.Value, err)
		}

		ct.Key = keyNode.Value
		if ct.Slug == "" {
			ct.Slug = ct.Key
		}

		types = append(types, ct)
	}

	return types, nil
}

// LoadTaxonomyTypes reads a taxonomy.yml file: a top-level mapping of
// configuration key to taxonomy type definition, in file order.
func LoadTaxonomyTypes(path string) ([]TaxonomyType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Taxonomies are optional.
			return nil, nil
		}
		return nil, fmt.Errorf("reading taxonomy file %q: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}

	mapping, err := documentMapping(&root, path)
	if err != nil {
		return nil, err
	}

	types := make([]TaxonomyType, 0, len(mapping.Content)/2)

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode := mapping.Content[i]
		valNode := mapping.Content[i+1]

		var tt TaxonomyType
		if err := decodeStrict(valNode, &tt); err != nil {
			return nil, fmt.Errorf("taxonomy type %q: %w", keyNode.Value, err)
		}

		tt.Key = keyNode.Value
		if tt.Slug == "" {
			tt.Slug = tt.Key
		}

		types = append(types, tt)
	}

	return types, nil
}

// documentMapping unwraps a parsed YAML document and returns its top-level
// mapping node. An empty file yields an empty mapping.
func documentMapping(root *yaml.Node, path string) (*yaml.Node, error) {
	if root.Kind == 0 || len(root.Content) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode}, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%q: expected a top-level mapping, got %s", path, nodeKind(doc))
	}

	return doc, nil
}

// decodeStrict decodes a YAML node into out, rejecting unknown keys so that
// misspelled attributes fail loudly instead of being silently ignored.
func decodeStrict(node *yaml.Node, out any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if err := enc.Encode(node); err != nil {
		return fmt.Errorf("re-encoding node: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("re-encoding node: %w", err)
	}

	dec := yaml.NewDecoder(&buf)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}
	return nil
}
