package schema

import (
	"fmt"
	"strings"
)

// QuoteIdent quotes a SQL identifier using double quotes, escaping any
// embedded double quotes by doubling them. Identifiers are already
// restricted by the validator; quoting is defence in depth.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// fieldSQLType returns the PostgreSQL column type for a field.
func fieldSQLType(f Field) string {
	switch f.Type {
	case FieldTypeText, FieldTypeSlug:
		return "VARCHAR(256)"
	case FieldTypeTextarea, FieldTypeHTML, FieldTypeMarkdown:
		return "TEXT"
	case FieldTypeInteger:
		return "INTEGER"
	case FieldTypeFloat:
		return "DOUBLE PRECISION"
	case FieldTypeCheckbox:
		return "BOOLEAN"
	case FieldTypeDate:
		return "DATE"
	case FieldTypeDatetime:
		return "TIMESTAMP"
	case FieldTypeImage, FieldTypeFile, FieldTypeVideo, FieldTypeGeolocation:
		// Structured values, stored as JSON objects.
		return "JSONB"
	case FieldTypeImageList, FieldTypeFileList:
		return "JSONB"
	case FieldTypeSelect:
		// Multi-selects store a JSON-encoded array in a text column, which
		// is what makes the quoted substring where-filter necessary.
		return "TEXT"
	default:
		return "TEXT"
	}
}

// CreateTableSQL generates the CREATE TABLE statement for a content type.
// The table carries the intrinsic base columns followed by one column per
// defined field, in definition order.
func CreateTableSQL(tableName string, ct ContentType) string {
	var b strings.Builder

	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(QuoteIdent(tableName))
	b.WriteString(" (\n")
	b.WriteString("    " + QuoteIdent("id") + " SERIAL PRIMARY KEY,\n")
	b.WriteString("    " + QuoteIdent("slug") + " VARCHAR(128) NOT NULL,\n")
	b.WriteString("    " + QuoteIdent("datecreated") + " TIMESTAMP NOT NULL DEFAULT now(),\n")
	b.WriteString("    " + QuoteIdent("datechanged") + " TIMESTAMP NOT NULL DEFAULT now(),\n")
	b.WriteString("    " + QuoteIdent("datepublish") + " TIMESTAMP,\n")
	b.WriteString("    " + QuoteIdent("datedepublish") + " TIMESTAMP,\n")
	b.WriteString("    " + QuoteIdent("ownerid") + " INTEGER,\n")
	b.WriteString("    " + QuoteIdent("status") + " VARCHAR(32) NOT NULL DEFAULT 'draft'")

	for _, f := range ct.Fields {
		b.WriteString(",\n    ")
		b.WriteString(QuoteIdent(f.Name))
		b.WriteString(" ")
		b.WriteString(fieldSQLType(f))
	}

	b.WriteString("\n)")

	return b.String()
}

// AddColumnSQL generates the ALTER TABLE statement that adds a missing
// field column to an existing content table.
func AddColumnSQL(tableName string, f Field) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
		QuoteIdent(tableName), QuoteIdent(f.Name), fieldSQLType(f))
}

// SlugIndexSQL generates the index statement for the slug column of a
// content table. Slugs are the primary lookup key for single records.
func SlugIndexSQL(tableName string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
		QuoteIdent("idx_"+tableName+"_slug"), QuoteIdent(tableName), QuoteIdent("slug"))
}
