package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/thirdwave/contentapi/internal/database"
	"github.com/thirdwave/contentapi/internal/schema"
)

// ErrNotFound is returned when a single-record lookup matches nothing.
var ErrNotFound = errors.New("content record not found")

// Postgres is the PostgreSQL-backed content store.
type Postgres struct {
	db         *database.DB
	types      []schema.ContentType
	taxonomies []schema.TaxonomyType
	grouping   map[string]bool // taxonomy type keys with grouping behaviour
}

// NewPostgres creates a Postgres store serving the given content type and
// taxonomy type definitions.
func NewPostgres(db *database.DB, types []schema.ContentType, taxonomies []schema.TaxonomyType) *Postgres {
	grouping := make(map[string]bool)
	for _, tt := range taxonomies {
		if tt.BehavesLike == schema.BehavesLikeGrouping {
			grouping[tt.Key] = true
		}
	}

	return &Postgres{
		db:         db,
		types:      types,
		taxonomies: taxonomies,
		grouping:   grouping,
	}
}

// ContentType returns the content type configured under the given key or
// slug.
func (p *Postgres) ContentType(name string) (schema.ContentType, bool) {
	for _, ct := range p.types {
		if ct.Key == name || ct.Slug == name || ct.SingularSlug == name {
			return ct, true
		}
	}
	return schema.ContentType{}, false
}

// TaxonomyType returns the taxonomy type configured under the given key or
// slug.
func (p *Postgres) TaxonomyType(name string) (schema.TaxonomyType, bool) {
	for _, tt := range p.taxonomies {
		if tt.Key == name || tt.Slug == name {
			return tt, true
		}
	}
	return schema.TaxonomyType{}, false
}

// ContentTypeKeys returns the configured content type keys in
// configuration order.
func (p *Postgres) ContentTypeKeys() []string {
	keys := make([]string, len(p.types))
	for i, ct := range p.types {
		keys[i] = ct.Key
	}
	return keys
}

func tableName(slug string) string {
	return TablePrefix + slug
}

// orderColumnRE restricts order expressions to plain column names.
var orderColumnRE = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// orderClause translates a client order expression ("field", "-field" or
// "field DESC") into a SQL ORDER BY fragment, validating the column
// against the content type.
func orderClause(order string, ct schema.ContentType) (string, error) {
	order = strings.TrimSpace(order)
	if order == "" {
		return "", nil
	}

	desc := false
	if upper := strings.ToUpper(order); strings.HasSuffix(upper, " DESC") {
		order = strings.TrimSpace(order[:len(order)-len(" DESC")])
		desc = true
	} else if strings.HasSuffix(upper, " ASC") {
		order = strings.TrimSpace(order[:len(order)-len(" ASC")])
	}
	if strings.HasPrefix(order, "-") {
		order = order[1:]
		desc = true
	}

	if !orderColumnRE.MatchString(order) {
		return "", fmt.Errorf("invalid order field %q", order)
	}
	if _, ok := ct.FieldByName(order); !ok && !schema.IsBaseColumn(order) {
		return "", fmt.Errorf("unknown order field %q for %s", order, ct.Key)
	}

	clause := schema.QuoteIdent(order)
	if desc {
		clause += " DESC"
	}
	return clause, nil
}

// whereClause builds WHERE fragments from the params for one content
// type. Filters on fields the type does not declare are skipped, so that
// multi-type scopes with type-specific filters do not fail outright.
func whereClause(ct schema.ContentType, params Params, argIdx int) (parts []string, args []any, next int) {
	next = argIdx

	if params.Status != "" {
		parts = append(parts, fmt.Sprintf("%s = $%d", schema.QuoteIdent("status"), next))
		args = append(args, params.Status)
		next++
	}

	// Sorted keys keep the parameter order deterministic.
	fields := make([]string, 0, len(params.Where))
	for f := range params.Where {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, f := range fields {
		if _, ok := ct.FieldByName(f); !ok && !schema.IsBaseColumn(f) {
			continue
		}
		op := "="
		if strings.Contains(params.Where[f], "%") {
			op = "LIKE"
		}
		parts = append(parts, fmt.Sprintf("%s::text %s $%d", schema.QuoteIdent(f), op, next))
		args = append(args, params.Where[f])
		next++
	}

	return parts, args, next
}

// GetContent executes a scope expression against the store. It returns the
// matching records and the total match count before paging.
func (p *Postgres) GetContent(ctx context.Context, scopeExpr string, params Params) ([]RawRecord, int, error) {
	scope, err := ParseScope(scopeExpr)
	if err != nil {
		return nil, 0, err
	}

	types := make([]schema.ContentType, 0, len(scope.Types))
	for _, name := range scope.Types {
		ct, ok := p.ContentType(name)
		if !ok {
			return nil, 0, fmt.Errorf("unknown content type %q in scope %q", name, scopeExpr)
		}
		types = append(types, ct)
	}

	switch scope.Mode {
	case ModeSingle:
		record, err := p.getSingle(ctx, types[0], scope.SlugOrID, params)
		if err != nil {
			return nil, 0, err
		}
		return []RawRecord{record}, 1, nil
	case ModeLatest:
		records, err := p.getEdge(ctx, types, scope.Amount, true)
		return records, len(records), err
	case ModeFirst:
		records, err := p.getEdge(ctx, types, scope.Amount, false)
		return records, len(records), err
	case ModeRandom:
		records, err := p.getRandom(ctx, types, scope.Amount, params)
		return records, len(records), err
	default:
		return p.getListing(ctx, types, params)
	}
}

// getSingle fetches one record by slug, or by id when the reference is
// numeric.
func (p *Postgres) getSingle(ctx context.Context, ct schema.ContentType, slugOrID string, params Params) (RawRecord, error) {
	where := schema.QuoteIdent("slug") + " = $1"
	args := []any{slugOrID}

	if id, err := strconv.ParseInt(slugOrID, 10, 64); err == nil {
		where = schema.QuoteIdent("id") + " = $1"
		args = []any{id}
	}
	if params.Status != "" {
		where += fmt.Sprintf(" AND %s = $2", schema.QuoteIdent("status"))
		args = append(args, params.Status)
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s LIMIT 1",
		schema.QuoteIdent(tableName(ct.Slug)), where)

	records, err := p.queryRecords(ctx, ct, sql, args)
	if err != nil {
		return RawRecord{}, err
	}
	if len(records) == 0 {
		return RawRecord{}, ErrNotFound
	}
	return records[0], nil
}

// getEdge fetches the newest (latest=true) or oldest published records.
func (p *Postgres) getEdge(ctx context.Context, types []schema.ContentType, amount int, latest bool) ([]RawRecord, error) {
	dir := "ASC"
	if latest {
		dir = "DESC"
	}

	var merged []RawRecord
	for _, ct := range types {
		sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1 ORDER BY %s %s LIMIT %d",
			schema.QuoteIdent(tableName(ct.Slug)),
			schema.QuoteIdent("status"),
			schema.QuoteIdent("datepublish"), dir, amount)

		records, err := p.queryRecords(ctx, ct, sql, []any{StatusPublished})
		if err != nil {
			return nil, err
		}
		merged = append(merged, records...)
	}

	sortByValue(merged, "datepublish", latest)
	if len(merged) > amount {
		merged = merged[:amount]
	}
	return merged, nil
}

// getRandom fetches a random selection of published records.
func (p *Postgres) getRandom(ctx context.Context, types []schema.ContentType, amount int, params Params) ([]RawRecord, error) {
	var merged []RawRecord

	for _, ct := range types {
		parts, args, _ := whereClause(ct, params, 1)
		where := ""
		if len(parts) > 0 {
			where = "WHERE " + strings.Join(parts, " AND ")
		}

		sql := fmt.Sprintf("SELECT * FROM %s %s ORDER BY random() LIMIT %d",
			schema.QuoteIdent(tableName(ct.Slug)), where, amount)

		records, err := p.queryRecords(ctx, ct, sql, args)
		if err != nil {
			return nil, err
		}
		merged = append(merged, records...)
	}

	rand.Shuffle(len(merged), func(i, j int) {
		merged[i], merged[j] = merged[j], merged[i]
	})
	if len(merged) > amount {
		merged = merged[:amount]
	}
	return merged, nil
}

// getListing fetches a page of records for one or more content types.
// Single-type scopes page in SQL; multi-type scopes fetch the head of each
// type, merge-sort, and page in memory.
func (p *Postgres) getListing(ctx context.Context, types []schema.ContentType, params Params) ([]RawRecord, int, error) {
	total := 0
	for _, ct := range types {
		parts, args, _ := whereClause(ct, params, 1)
		where := ""
		if len(parts) > 0 {
			where = "WHERE " + strings.Join(parts, " AND ")
		}

		countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s %s",
			schema.QuoteIdent(tableName(ct.Slug)), where)

		var count int
		if err := p.db.Pool().QueryRow(ctx, countSQL, args...).Scan(&count); err != nil {
			return nil, 0, fmt.Errorf("counting %s records: %w", ct.Key, err)
		}
		total += count
	}

	offset := params.Offset()
	head := params.Limit + offset

	var merged []RawRecord
	for _, ct := range types {
		parts, args, next := whereClause(ct, params, 1)
		where := ""
		if len(parts) > 0 {
			where = "WHERE " + strings.Join(parts, " AND ")
		}

		order, err := orderClause(params.Order, ct)
		if err != nil {
			return nil, 0, err
		}
		orderSQL := ""
		if order != "" {
			orderSQL = "ORDER BY " + order
		}

		sql := fmt.Sprintf("SELECT * FROM %s %s %s",
			schema.QuoteIdent(tableName(ct.Slug)), where, orderSQL)

		if params.Limit > 0 {
			if len(types) == 1 {
				sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", next, next+1)
				args = append(args, params.Limit, offset)
			} else {
				sql += fmt.Sprintf(" LIMIT $%d", next)
				args = append(args, head)
			}
		}

		records, err := p.queryRecords(ctx, ct, sql, args)
		if err != nil {
			return nil, 0, err
		}
		merged = append(merged, records...)
	}

	if len(types) > 1 {
		if field, desc, ok := orderField(params.Order); ok {
			sortByValue(merged, field, desc)
		}
		if offset >= len(merged) {
			merged = nil
		} else {
			merged = merged[offset:]
		}
		if params.Limit > 0 && len(merged) > params.Limit {
			merged = merged[:params.Limit]
		}
	}

	return merged, total, nil
}

// GetContentByTaxonomy returns all published content assigned the given
// taxonomy value, together with the total match count before paging.
func (p *Postgres) GetContentByTaxonomy(ctx context.Context, taxonomyType, slug string, params Params) ([]RawRecord, int, error) {
	rows, err := p.db.Pool().Query(ctx,
		`SELECT contenttype, content_id FROM capi_taxonomy
		 WHERE taxonomytype = $1 AND slug = $2
		 ORDER BY sortorder, content_id`,
		taxonomyType, slug)
	if err != nil {
		return nil, 0, fmt.Errorf("querying taxonomy assignments: %w", err)
	}
	defer rows.Close()

	type ref struct {
		typeSlug string
		id       int64
	}
	var refs []ref
	for rows.Next() {
		var r ref
		if err := rows.Scan(&r.typeSlug, &r.id); err != nil {
			return nil, 0, fmt.Errorf("scanning taxonomy assignment: %w", err)
		}
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating taxonomy assignments: %w", err)
	}

	// Fetch the referenced records grouped by type, then restore
	// assignment order.
	idsByType := make(map[string][]int64)
	for _, r := range refs {
		idsByType[r.typeSlug] = append(idsByType[r.typeSlug], r.id)
	}

	byKey := make(map[string]RawRecord)
	for typeSlug, ids := range idsByType {
		ct, ok := p.ContentType(typeSlug)
		if !ok {
			continue
		}

		sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = ANY($1) AND %s = $2",
			schema.QuoteIdent(tableName(ct.Slug)),
			schema.QuoteIdent("id"),
			schema.QuoteIdent("status"))

		records, err := p.queryRecords(ctx, ct, sql, []any{ids, StatusPublished})
		if err != nil {
			return nil, 0, err
		}
		for _, rec := range records {
			byKey[fmt.Sprintf("%s/%d", typeSlug, rec.ID())] = rec
		}
	}

	var ordered []RawRecord
	for _, r := range refs {
		if rec, ok := byKey[fmt.Sprintf("%s/%d", r.typeSlug, r.id)]; ok {
			ordered = append(ordered, rec)
		}
	}

	total := len(ordered)
	offset := params.Offset()
	if offset >= len(ordered) {
		ordered = nil
	} else {
		ordered = ordered[offset:]
	}
	if params.Limit > 0 && len(ordered) > params.Limit {
		ordered = ordered[:params.Limit]
	}

	return ordered, total, nil
}

// searchFieldTypes are the field types included in text search.
var searchFieldTypes = map[schema.FieldType]bool{
	schema.FieldTypeText:     true,
	schema.FieldTypeTextarea: true,
	schema.FieldTypeHTML:     true,
	schema.FieldTypeMarkdown: true,
}

// SearchContent searches the text fields of the given content types for
// the filter term. Results are ordered newest first and paged by limit and
// offset.
func (p *Postgres) SearchContent(ctx context.Context, filter string, types []string, where map[string]string, limit, offset int) (SearchResult, error) {
	pattern := "%" + filter + "%"
	params := Params{Status: StatusPublished, Where: where}

	var result SearchResult
	var merged []RawRecord

	for _, name := range types {
		ct, ok := p.ContentType(strings.TrimSpace(name))
		if !ok {
			return SearchResult{}, fmt.Errorf("unknown content type %q in search", name)
		}

		var matchCols []string
		for _, f := range ct.Fields {
			if searchFieldTypes[f.Type] {
				matchCols = append(matchCols, schema.QuoteIdent(f.Name))
			}
		}
		if len(matchCols) == 0 {
			continue
		}

		parts, args, next := whereClause(ct, params, 1)

		var likes []string
		for _, col := range matchCols {
			likes = append(likes, fmt.Sprintf("%s ILIKE $%d", col, next))
		}
		parts = append(parts, "("+strings.Join(likes, " OR ")+")")
		args = append(args, pattern)
		next++

		whereSQL := "WHERE " + strings.Join(parts, " AND ")
		table := schema.QuoteIdent(tableName(ct.Slug))

		var count int
		countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", table, whereSQL)
		if err := p.db.Pool().QueryRow(ctx, countSQL, args...).Scan(&count); err != nil {
			return SearchResult{}, fmt.Errorf("counting %s search matches: %w", ct.Key, err)
		}
		result.Count += count

		sql := fmt.Sprintf("SELECT * FROM %s %s ORDER BY %s DESC LIMIT $%d",
			table, whereSQL, schema.QuoteIdent("datepublish"), next)
		args = append(args, offset+limit)

		records, err := p.queryRecords(ctx, ct, sql, args)
		if err != nil {
			return SearchResult{}, err
		}
		merged = append(merged, records...)
	}

	sortByValue(merged, "datepublish", true)
	if offset >= len(merged) {
		merged = nil
	} else {
		merged = merged[offset:]
	}
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	result.Records = merged
	return result, nil
}

// SaveContent inserts a new record for the given content type and returns
// it as stored.
func (p *Postgres) SaveContent(ctx context.Context, ct schema.ContentType, values map[string]any) (RawRecord, error) {
	cols := []string{"slug", "status"}

	slug, _ := values["slug"].(string)
	if slug == "" {
		slug = deriveSlug(ct, values)
	}
	status, _ := values["status"].(string)
	if status == "" {
		status = "draft"
	}

	args := []any{slug, status}

	for _, f := range ct.Fields {
		val, ok := values[f.Name]
		if !ok {
			continue
		}
		cols = append(cols, f.Name)
		args = append(args, encodeFieldValue(f, val))
	}

	placeholders := make([]string, len(cols))
	quoted := make([]string, len(cols))
	for i, c := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		quoted[i] = schema.QuoteIdent(c)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		schema.QuoteIdent(tableName(ct.Slug)),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		schema.QuoteIdent("id"))

	var id int64
	if err := p.db.Pool().QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return RawRecord{}, fmt.Errorf("inserting %s record: %w", ct.Key, err)
	}

	return p.getSingle(ctx, ct, strconv.FormatInt(id, 10), Params{})
}

// encodeFieldValue converts an incoming field value into the form its
// column stores. Multi-selects are stored as a JSON-encoded array in a
// text column.
func encodeFieldValue(f schema.Field, val any) any {
	if f.Type == schema.FieldTypeSelect && f.Multiple {
		encoded, err := json.Marshal(val)
		if err != nil {
			return val
		}
		return string(encoded)
	}
	return val
}

// deriveSlug builds a slug from the first text field of the record.
func deriveSlug(ct schema.ContentType, values map[string]any) string {
	for _, f := range ct.Fields {
		if f.Type != schema.FieldTypeText {
			continue
		}
		if s, ok := values[f.Name].(string); ok && s != "" {
			return Slugify(s)
		}
	}
	return ""
}

// slugRE matches runs of characters that are not allowed in slugs.
var slugRE = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a string and reduces it to dash-separated
// alphanumeric runs.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = slugRE.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// TaxonomyValues returns the distinct values of a taxonomy type with
// their usage counts, ordered by the given SQL order expression. The
// expression must come from the taxonomy ordering resolver, never from
// raw client input.
func (p *Postgres) TaxonomyValues(ctx context.Context, taxonomyType, orderExpr string) ([]TaxonomyValue, error) {
	sql := fmt.Sprintf(
		`SELECT name, slug, COUNT(name) AS results
		 FROM capi_taxonomy
		 WHERE taxonomytype = $1
		 GROUP BY name, slug
		 ORDER BY %s`, orderExpr)

	rows, err := p.db.Pool().Query(ctx, sql, taxonomyType)
	if err != nil {
		return nil, fmt.Errorf("querying taxonomy values: %w", err)
	}
	defer rows.Close()

	var values []TaxonomyValue
	for rows.Next() {
		var v TaxonomyValue
		if err := rows.Scan(&v.Name, &v.Slug, &v.Results); err != nil {
			return nil, fmt.Errorf("scanning taxonomy value: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating taxonomy values: %w", err)
	}

	return values, nil
}

// ABCCounts returns, per first letter of the given field, the number of
// published records. The field must be declared on the content type.
func (p *Postgres) ABCCounts(ctx context.Context, ct schema.ContentType, field string) ([]LetterCount, error) {
	if _, ok := ct.FieldByName(field); !ok && !schema.IsBaseColumn(field) {
		return nil, fmt.Errorf("unknown field %q for %s", field, ct.Key)
	}

	col := schema.QuoteIdent(field)
	sql := fmt.Sprintf(
		`SELECT UPPER(SUBSTR(%s::text, 1, 1)) AS letter, COUNT(*) AS matches
		 FROM %s
		 WHERE %s = $1
		 GROUP BY letter
		 ORDER BY letter`,
		col, schema.QuoteIdent(tableName(ct.Slug)), schema.QuoteIdent("status"))

	rows, err := p.db.Pool().Query(ctx, sql, StatusPublished)
	if err != nil {
		return nil, fmt.Errorf("querying letter counts: %w", err)
	}
	defer rows.Close()

	var counts []LetterCount
	for rows.Next() {
		var c LetterCount
		var letter *string
		if err := rows.Scan(&letter, &c.Rows); err != nil {
			return nil, fmt.Errorf("scanning letter count: %w", err)
		}
		if letter != nil {
			c.Letter = *letter
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating letter counts: %w", err)
	}

	return counts, nil
}

// queryRecords executes a SELECT * query for one content type and builds
// raw records, including taxonomy, relation, and group metadata.
func (p *Postgres) queryRecords(ctx context.Context, ct schema.ContentType, sql string, args []any) ([]RawRecord, error) {
	rows, err := p.db.Pool().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s records: %w", ct.Key, err)
	}
	defer rows.Close()

	records, err := scanRecords(rows, ct.Slug)
	if err != nil {
		return nil, fmt.Errorf("scanning %s records: %w", ct.Key, err)
	}

	if err := p.attachMetadata(ctx, ct.Slug, records); err != nil {
		return nil, err
	}

	return records, nil
}

// scanRecords converts query rows into raw records keyed by column name.
func scanRecords(rows pgx.Rows, typeSlug string) ([]RawRecord, error) {
	var records []RawRecord

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}

		values := make(map[string]any, len(vals))
		for i, fd := range rows.FieldDescriptions() {
			values[fd.Name] = vals[i]
		}

		records = append(records, RawRecord{
			TypeSlug: typeSlug,
			Values:   values,
		})
	}

	return records, rows.Err()
}

// attachMetadata loads taxonomy assignments, relations, and grouping
// metadata for the given records in two batched queries.
func (p *Postgres) attachMetadata(ctx context.Context, typeSlug string, records []RawRecord) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(records))
	byID := make(map[int64]*RawRecord, len(records))
	for i := range records {
		id := records[i].ID()
		ids = append(ids, id)
		byID[id] = &records[i]
	}

	rows, err := p.db.Pool().Query(ctx,
		`SELECT content_id, taxonomytype, slug, name, sortorder
		 FROM capi_taxonomy
		 WHERE contenttype = $1 AND content_id = ANY($2)
		 ORDER BY sortorder, id`,
		typeSlug, ids)
	if err != nil {
		return fmt.Errorf("querying taxonomy for %s: %w", typeSlug, err)
	}
	defer rows.Close()

	for rows.Next() {
		var contentID int64
		var taxType, slug, name string
		var sortorder int
		if err := rows.Scan(&contentID, &taxType, &slug, &name, &sortorder); err != nil {
			return fmt.Errorf("scanning taxonomy row: %w", err)
		}

		rec := byID[contentID]
		if rec == nil {
			continue
		}
		if rec.Taxonomy == nil {
			rec.Taxonomy = make(map[string]map[string]string)
		}
		if rec.Taxonomy[taxType] == nil {
			rec.Taxonomy[taxType] = make(map[string]string)
		}
		rec.Taxonomy[taxType]["/"+taxType+"/"+slug] = name

		if p.grouping[taxType] && rec.Group == nil {
			rec.Group = &Group{Slug: slug, Order: sortorder}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating taxonomy rows: %w", err)
	}

	relRows, err := p.db.Pool().Query(ctx,
		`SELECT from_id, to_contenttype, to_id
		 FROM capi_relations
		 WHERE from_contenttype = $1 AND from_id = ANY($2)
		 ORDER BY id`,
		typeSlug, ids)
	if err != nil {
		return fmt.Errorf("querying relations for %s: %w", typeSlug, err)
	}
	defer relRows.Close()

	for relRows.Next() {
		var fromID, toID int64
		var toType string
		if err := relRows.Scan(&fromID, &toType, &toID); err != nil {
			return fmt.Errorf("scanning relation row: %w", err)
		}

		rec := byID[fromID]
		if rec == nil {
			continue
		}
		if rec.Relations == nil {
			rec.Relations = make(map[string][]int64)
		}
		rec.Relations[toType] = append(rec.Relations[toType], toID)
	}
	if err := relRows.Err(); err != nil {
		return fmt.Errorf("iterating relation rows: %w", err)
	}

	return nil
}

// orderField splits a client order expression into its field and
// direction.
func orderField(order string) (field string, desc bool, ok bool) {
	order = strings.TrimSpace(order)
	if order == "" {
		return "", false, false
	}
	if upper := strings.ToUpper(order); strings.HasSuffix(upper, " DESC") {
		return strings.TrimSpace(order[:len(order)-len(" DESC")]), true, true
	} else if strings.HasSuffix(upper, " ASC") {
		return strings.TrimSpace(order[:len(order)-len(" ASC")]), false, true
	}
	if strings.HasPrefix(order, "-") {
		return order[1:], true, true
	}
	return order, false, true
}

// sortByValue stable-sorts records by the named value, descending when
// desc is set.
func sortByValue(records []RawRecord, field string, desc bool) {
	sort.SliceStable(records, func(i, j int) bool {
		cmp := compareValues(records[i].Values[field], records[j].Values[field])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// compareValues compares two raw field values of the same column. Nil
// sorts last regardless of direction.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}

	if at, aok := a.(time.Time); aok {
		if bt, bok := b.(time.Time); bok {
			switch {
			case at.Before(bt):
				return -1
			case at.After(bt):
				return 1
			default:
				return 0
			}
		}
	}

	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// toFloat converts a numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
