package api

import (
	"github.com/thirdwave/contentapi/internal/config"
	"github.com/thirdwave/contentapi/internal/schema"
)

// Column is a single output column of a projected record. Field is nil for
// base columns and for configured columns that do not match a declared field.
type Column struct {
	Name  string
	Field *schema.Field
}

// ResolveColumns determines the output columns for one content type and view.
// Base columns come first, then the view's field columns. A configured column
// name that matches a declared field carries that field's descriptor so its
// value can be parsed by type; unmatched names pass through raw.
func ResolveColumns(cfg *config.APIConfig, ct *schema.ContentType, view string) []Column {
	columns := make([]Column, 0, len(ct.Fields)+8)

	for _, name := range resolveBaseColumns(cfg, ct) {
		columns = append(columns, Column{Name: name})
	}

	typeCfg, hasTypeCfg := cfg.ContentTypes[ct.Key]
	viewList, hasView := []string(nil), false
	if hasTypeCfg {
		viewList, hasView = typeCfg.Views[view]
	}

	if !hasView {
		for i := range ct.Fields {
			columns = append(columns, Column{Name: ct.Fields[i].Name, Field: &ct.Fields[i]})
		}
		return columns
	}

	for _, name := range viewList {
		if f, ok := ct.FieldByName(name); ok {
			field := f
			columns = append(columns, Column{Name: name, Field: &field})
		} else {
			columns = append(columns, Column{Name: name})
		}
	}
	return columns
}

// resolveBaseColumns applies the precedence chain for base column selection:
// per-type configuration, then the global setting, then the intrinsic set.
func resolveBaseColumns(cfg *config.APIConfig, ct *schema.ContentType) []string {
	if typeCfg, ok := cfg.ContentTypes[ct.Key]; ok && typeCfg.BaseColumns != nil {
		return baseColumnsFromOption(typeCfg.BaseColumns)
	}
	if cfg.BaseColumns != nil {
		return baseColumnsFromOption(cfg.BaseColumns)
	}
	return schema.DefaultBaseColumns()
}

func baseColumnsFromOption(opt *config.ColumnsOption) []string {
	if opt.IsList {
		return opt.Columns
	}
	if opt.UseDefault {
		return schema.DefaultBaseColumns()
	}
	return nil
}
