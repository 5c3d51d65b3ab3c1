package api

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/thirdwave/contentapi/internal/media"
	"github.com/thirdwave/contentapi/internal/schema"
	"github.com/thirdwave/contentapi/internal/store"
)

// valueParser normalizes one raw field value for output.
type valueParser func(res *media.Resolver, value any) any

// valueParsers dispatches on the declared field type. Types without an
// entry pass their values through verbatim.
var valueParsers = map[schema.FieldType]valueParser{
	schema.FieldTypeFile:      parseFileValue,
	schema.FieldTypeImage:     parseFileValue,
	schema.FieldTypeImageList: parseFileListValue,
	schema.FieldTypeFileList:  parseFileListValue,
	schema.FieldTypeVideo:     parseVideoValue,
}

// youtubeIDRE matches the video id in the known YouTube URL shapes: watch
// URLs, short youtu.be URLs, embed URLs and parameterized v= URLs.
var youtubeIDRE = regexp.MustCompile(`(?i)(?:youtube(?:-nocookie)?\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/ ]{11})`)

// Project converts one raw record into its output mapping for the given
// view: resolved columns with type-parsed values, folded taxonomy labels,
// and related records expanded one level deep for the types named in
// expand that the caller is allowed to read.
func (e *Engine) Project(ctx context.Context, rec store.RawRecord, view string, expand, roles []string) map[string]any {
	ct, ok := e.store.ContentType(rec.TypeSlug)
	if !ok {
		return rec.Values
	}

	out := make(map[string]any)

	for _, col := range ResolveColumns(e.cfg, &ct, view) {
		if col.Name == "contenttype" {
			out["contenttype"] = ct.Key
			continue
		}

		value := rec.Values[col.Name]
		fieldType := schema.FieldTypeUnknown
		if col.Field != nil {
			fieldType = col.Field.Type
		}
		if parse, ok := valueParsers[fieldType]; ok {
			value = parse(e.media, value)
		}
		out[col.Name] = value
	}

	if len(rec.Taxonomy) > 0 {
		taxonomy := make(map[string]map[string]string, len(rec.Taxonomy))
		for taxType, assignments := range rec.Taxonomy {
			folded := make(map[string]string, len(assignments))
			for url, label := range assignments {
				parts := strings.Split(url, "/")
				folded[label] = parts[len(parts)-1]
			}
			taxonomy[taxType] = folded
		}
		out["taxonomy"] = taxonomy
	}

	if len(rec.Relations) > 0 && len(expand) > 0 {
		relations := e.expandRelations(ctx, rec, view, expand, roles)
		if len(relations) > 0 {
			out["relations"] = relations
		}
	}

	return out
}

// expandRelations fetches and projects the related records for the
// relation types named in expand. Types that fail validation are skipped
// without surfacing an error, so one forbidden relation cannot break the
// whole projection.
func (e *Engine) expandRelations(ctx context.Context, rec store.RawRecord, view string, expand, roles []string) map[string][]map[string]any {
	relations := make(map[string][]map[string]any)

	for relType, ids := range rec.Relations {
		if _, err := e.ValidateContentType(relType, roles); err != nil {
			continue
		}
		if !containsString(expand, relType) {
			continue
		}

		related := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			records, _, err := e.store.GetContent(ctx, relType+"/"+strconv.FormatInt(id, 10), store.Params{
				Status: store.StatusPublished,
			})
			if err != nil || len(records) == 0 {
				continue
			}
			// Expansion goes one level deep; related records are
			// projected without their own relations.
			related = append(related, e.Project(ctx, records[0], view, nil, roles))
		}

		relations[relType] = related
	}

	return relations
}

// parseFileValue normalizes a file or image reference into the full file
// mapping. Bare strings are treated as the stored path; values without a
// usable file reference pass through unchanged.
func parseFileValue(res *media.Resolver, value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		m = map[string]any{"file": value}
	}

	key := "file"
	if stringValue(m[key]) == "" && stringValue(m["filename"]) != "" {
		key = "filename"
	}

	rel := stringValue(m[key])
	if rel == "" {
		return value
	}

	parts := strings.Split(rel, "/")
	path := res.PublicPath(rel)
	host := res.HostURL()
	size, mimeType := res.Stat(rel)

	title := rel
	if t := stringValue(m["title"]); t != "" {
		title = t
	}

	parsed := map[string]any{
		"title":     title,
		"file":      rel,
		"filename":  parts[len(parts)-1],
		"path":      path,
		"host":      host,
		"url":       host + path,
		"size":      nil,
		"extension": media.Extension(rel),
		"mime":      nil,
	}
	if size != nil {
		parsed["size"] = *size
	}
	if mimeType != nil {
		parsed["mime"] = *mimeType
	}

	return parsed
}

// parseFileListValue applies the file parser to every element of a
// sequence. Empty or non-sequence values pass through unchanged.
func parseFileListValue(res *media.Resolver, value any) any {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return value
	}

	parsed := make([]any, 0, len(list))
	for _, item := range list {
		parsed = append(parsed, parseFileValue(res, item))
	}
	return parsed
}

// parseVideoValue adds the extracted YouTube video id to a video mapping
// that carries a recognizable URL. Anything else passes through unchanged.
func parseVideoValue(_ *media.Resolver, value any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}

	url := stringValue(m["url"])
	if url == "" {
		return value
	}

	if match := youtubeIDRE.FindStringSubmatch(url); match != nil {
		m["id"] = match[1]
	}
	return m
}

// stringValue returns v as a string when it is one, else "".
func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
