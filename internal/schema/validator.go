package schema

import (
	"fmt"
	"regexp"
)

// nameRE restricts type and field identifiers to lowercase snake_case with
// optional dashes, keeping every identifier safe for use in table and column
// names without quoting tricks.
var nameRE = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Validate checks a set of content type and taxonomy type definitions for
// consistency: valid identifiers, known field types, no duplicate slugs, and
// taxonomy/relation references that resolve to configured types.
func Validate(types []ContentType, taxonomies []TaxonomyType) error {
	slugs := make(map[string]string, len(types))
	keys := make(map[string]bool, len(types))

	taxonomyKeys := make(map[string]bool, len(taxonomies))
	for _, tt := range taxonomies {
		if !nameRE.MatchString(tt.Key) {
			return fmt.Errorf("taxonomy type %q: invalid identifier", tt.Key)
		}
		if taxonomyKeys[tt.Key] {
			return fmt.Errorf("taxonomy type %q: duplicate definition", tt.Key)
		}
		taxonomyKeys[tt.Key] = true

		switch tt.BehavesLike {
		case BehavesLikeTags, BehavesLikeCategories, BehavesLikeGrouping:
		default:
			return fmt.Errorf("taxonomy type %q: unsupported behaves_like %q", tt.Key, tt.BehavesLike)
		}
	}

	for _, ct := range types {
		if !nameRE.MatchString(ct.Key) {
			return fmt.Errorf("content type %q: invalid identifier", ct.Key)
		}
		if keys[ct.Key] {
			return fmt.Errorf("content type %q: duplicate definition", ct.Key)
		}
		keys[ct.Key] = true

		if other, dup := slugs[ct.Slug]; dup {
			return fmt.Errorf("content type %q: slug %q already used by %q", ct.Key, ct.Slug, other)
		}
		slugs[ct.Slug] = ct.Key

		if err := validateFields(ct); err != nil {
			return err
		}

		for _, tax := range ct.Taxonomy {
			if !taxonomyKeys[tax] {
				return fmt.Errorf("content type %q: unknown taxonomy type %q", ct.Key, tax)
			}
		}
	}

	// Relations can only be checked once every key is known.
	for _, ct := range types {
		for _, rel := range ct.Relations {
			if !keys[rel] {
				return fmt.Errorf("content type %q: relation to unknown content type %q", ct.Key, rel)
			}
		}
	}

	return nil
}

// validateFields checks the field definitions of a single content type.
func validateFields(ct ContentType) error {
	seen := make(map[string]bool, len(ct.Fields))

	for _, f := range ct.Fields {
		if !nameRE.MatchString(f.Name) {
			return fmt.Errorf("content type %q: field %q: invalid identifier", ct.Key, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("content type %q: field %q: duplicate definition", ct.Key, f.Name)
		}
		seen[f.Name] = true

		if IsBaseColumn(f.Name) {
			return fmt.Errorf("content type %q: field %q: name collides with a base column", ct.Key, f.Name)
		}
		if !validFieldTypes[f.Type] {
			return fmt.Errorf("content type %q: field %q: unsupported type %q", ct.Key, f.Name, f.Type)
		}
		if f.Type == FieldTypeSelect && len(f.Values) == 0 {
			return fmt.Errorf("content type %q: field %q: select fields need values", ct.Key, f.Name)
		}
	}

	return nil
}
