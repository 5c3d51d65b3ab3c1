// Package schema handles loading, parsing, and validating YAML content type
// and taxonomy type definitions for the Content API.
package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FieldType represents the type of a content field.
type FieldType string

// Supported field types for content type definitions.
const (
	FieldTypeText        FieldType = "text"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeHTML        FieldType = "html"
	FieldTypeMarkdown    FieldType = "markdown"
	FieldTypeSlug        FieldType = "slug"
	FieldTypeImage       FieldType = "image"
	FieldTypeFile        FieldType = "file"
	FieldTypeImageList   FieldType = "imagelist"
	FieldTypeFileList    FieldType = "filelist"
	FieldTypeVideo       FieldType = "video"
	FieldTypeSelect      FieldType = "select"
	FieldTypeDate        FieldType = "date"
	FieldTypeDatetime    FieldType = "datetime"
	FieldTypeInteger     FieldType = "integer"
	FieldTypeFloat       FieldType = "float"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeGeolocation FieldType = "geolocation"

	// FieldTypeUnknown is assigned to synthetic columns that appear in a
	// view configuration without a matching field definition.
	FieldTypeUnknown FieldType = "unknown"
)

// validFieldTypes is the set of all supported field types, used for validation.
var validFieldTypes = map[FieldType]bool{
	FieldTypeText:        true,
	FieldTypeTextarea:    true,
	FieldTypeHTML:        true,
	FieldTypeMarkdown:    true,
	FieldTypeSlug:        true,
	FieldTypeImage:       true,
	FieldTypeFile:        true,
	FieldTypeImageList:   true,
	FieldTypeFileList:    true,
	FieldTypeVideo:       true,
	FieldTypeSelect:      true,
	FieldTypeDate:        true,
	FieldTypeDatetime:    true,
	FieldTypeInteger:     true,
	FieldTypeFloat:       true,
	FieldTypeCheckbox:    true,
	FieldTypeGeolocation: true,
}

// Field represents a single field within a content type definition.
type Field struct {
	// Name is the field identifier, used as the database column name and
	// the key in projected records. It is taken from the mapping key in
	// the YAML file, not from a YAML attribute.
	Name string `yaml:"-"`

	// Type is the field type, which determines the SQL column type and
	// the value parser applied during record projection.
	Type FieldType `yaml:"type"`

	// Label is the human-readable label for the field.
	Label string `yaml:"label,omitempty"`

	// Values is the list of allowed values for select fields.
	Values []string `yaml:"values,omitempty"`

	// Multiple indicates a select field stores several values. Such
	// values are persisted as a JSON-encoded array, which is why where
	// filters on select fields need the quoted substring match.
	Multiple bool `yaml:"multiple,omitempty"`

	// Uses names the fields a slug field is generated from.
	Uses []string `yaml:"uses,omitempty"`

	// Upload is the subdirectory below the files directory that uploads
	// for this field are stored in.
	Upload string `yaml:"upload,omitempty"`
}

// Fields is an ordered list of field definitions. It deserializes from a
// YAML mapping of field name to definition, preserving the order in which
// the fields appear in the file.
type Fields []Field

// UnmarshalYAML decodes a YAML mapping node into an ordered field list.
// Mapping order in the source file is preserved, which matters because the
// column resolver emits fields in definition order.
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("fields must be a mapping, got %s", nodeKind(node))
	}

	fields := make(Fields, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		var field Field
		if err := valNode.Decode(&field); err != nil {
			return fmt.Errorf("field %q: %w", keyNode.Value, err)
		}
		field.Name = keyNode.Value

		fields = append(fields, field)
	}

	*f = fields
	return nil
}

// nodeKind returns a readable name for a YAML node kind, for error messages.
func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "unknown node"
	}
}

// ContentType represents a parsed content type definition. The Key is the
// identifier the type is configured under; the Slug identifies it in URLs
// and in stored records.
type ContentType struct {
	// Key is the configuration key for the type (the mapping key in
	// contenttypes.yml), e.g. "articles".
	Key string `yaml:"-"`

	// Name is the human-readable plural name.
	Name string `yaml:"name"`

	// SingularName is the human-readable singular name.
	SingularName string `yaml:"singular_name,omitempty"`

	// Slug identifies the type in URLs and store records. Defaults to the
	// Key when not set.
	Slug string `yaml:"slug,omitempty"`

	// SingularSlug is the singular form of the slug.
	SingularSlug string `yaml:"singular_slug,omitempty"`

	// Fields defines the fields for this content type, in file order.
	Fields Fields `yaml:"fields"`

	// Taxonomy lists the taxonomy types whose values can be assigned to
	// records of this type.
	Taxonomy []string `yaml:"taxonomy,omitempty"`

	// Relations lists the content types records of this type can relate to.
	Relations []string `yaml:"relations,omitempty"`
}

// FieldByName returns the field definition with the given name.
func (ct ContentType) FieldByName(name string) (Field, bool) {
	for _, f := range ct.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// TaxonomyBehaviour describes how a taxonomy type behaves.
type TaxonomyBehaviour string

// Supported taxonomy behaviours.
const (
	BehavesLikeTags       TaxonomyBehaviour = "tags"
	BehavesLikeCategories TaxonomyBehaviour = "categories"
	BehavesLikeGrouping   TaxonomyBehaviour = "grouping"
)

// TaxonomyType represents a parsed taxonomy type definition.
type TaxonomyType struct {
	// Key is the configuration key for the taxonomy type.
	Key string `yaml:"-"`

	// Name is the human-readable plural name.
	Name string `yaml:"name"`

	// Slug identifies the taxonomy type in URLs. Defaults to the Key.
	Slug string `yaml:"slug,omitempty"`

	// BehavesLike determines the taxonomy behaviour. Grouping taxonomies
	// feed the group metadata used by the default-order listing sort.
	BehavesLike TaxonomyBehaviour `yaml:"behaves_like"`

	// Options is the fixed list of allowed values for categories-style
	// taxonomies. Tags-style taxonomies accept free values.
	Options []string `yaml:"options,omitempty"`
}

// baseColumns are the columns present on every content table, in the order
// they are emitted when no base column configuration applies.
var baseColumns = []string{
	"id",
	"slug",
	"datecreated",
	"datechanged",
	"datepublish",
	"datedepublish",
	"ownerid",
	"status",
}

// DefaultBaseColumns returns the intrinsic base columns every content
// record carries. The caller may modify the returned slice.
func DefaultBaseColumns() []string {
	cols := make([]string, len(baseColumns))
	copy(cols, baseColumns)
	return cols
}

// IsBaseColumn reports whether name is one of the intrinsic base columns.
func IsBaseColumn(name string) bool {
	for _, c := range baseColumns {
		if c == name {
			return true
		}
	}
	return false
}
