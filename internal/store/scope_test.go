package store

import "testing"

func TestParseScope(t *testing.T) {
	tests := []struct {
		expr string
		want Scope
	}{
		{"articles", Scope{Types: []string{"articles"}, Mode: ModeListing}},
		{"(articles,pages)", Scope{Types: []string{"articles", "pages"}, Mode: ModeListing}},
		{"articles/latest/5", Scope{Types: []string{"articles"}, Mode: ModeLatest, Amount: 5}},
		{"articles/first/3", Scope{Types: []string{"articles"}, Mode: ModeFirst, Amount: 3}},
		{"(articles,pages)/random/10", Scope{Types: []string{"articles", "pages"}, Mode: ModeRandom, Amount: 10}},
		{"articles/hello-world", Scope{Types: []string{"articles"}, Mode: ModeSingle, SlugOrID: "hello-world"}},
		{"articles/42", Scope{Types: []string{"articles"}, Mode: ModeSingle, SlugOrID: "42"}},
		{"( articles , pages )", Scope{Types: []string{"articles", "pages"}, Mode: ModeListing}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseScope(tt.expr)
			if err != nil {
				t.Fatalf("ParseScope(%q): %v", tt.expr, err)
			}

			if got.Mode != tt.want.Mode {
				t.Errorf("mode: got %v, want %v", got.Mode, tt.want.Mode)
			}
			if got.Amount != tt.want.Amount {
				t.Errorf("amount: got %d, want %d", got.Amount, tt.want.Amount)
			}
			if got.SlugOrID != tt.want.SlugOrID {
				t.Errorf("slugOrID: got %q, want %q", got.SlugOrID, tt.want.SlugOrID)
			}
			if len(got.Types) != len(tt.want.Types) {
				t.Fatalf("types: got %v, want %v", got.Types, tt.want.Types)
			}
			for i := range tt.want.Types {
				if got.Types[i] != tt.want.Types[i] {
					t.Fatalf("types: got %v, want %v", got.Types, tt.want.Types)
				}
			}
		})
	}
}

func TestParseScope_Invalid(t *testing.T) {
	exprs := []string{
		"",
		"   ",
		"(articles",
		"()",
		"articles/latest",
		"articles/latest/x",
		"articles/latest/0",
		"articles/random/-1",
		"(articles,pages)/some-slug",
		"articles/some/extra",
	}

	for _, expr := range exprs {
		if _, err := ParseScope(expr); err == nil {
			t.Errorf("ParseScope(%q): expected error, got nil", expr)
		}
	}
}

func TestParamsOffset(t *testing.T) {
	tests := []struct {
		params Params
		want   int
	}{
		{Params{Limit: 10, Page: 1}, 0},
		{Params{Limit: 10, Page: 3}, 20},
		{Params{Limit: 0, Page: 5}, 0},
		{Params{Limit: 10, Page: 0}, 0},
	}

	for _, tt := range tests {
		if got := tt.params.Offset(); got != tt.want {
			t.Errorf("Offset(limit=%d, page=%d): got %d, want %d",
				tt.params.Limit, tt.params.Page, got, tt.want)
		}
	}
}

func TestRawRecordID(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
	}{
		{"int64", int64(7), 7},
		{"int32", int32(8), 8},
		{"int", 9, 9},
		{"string", "10", 0},
		{"missing", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := RawRecord{Values: map[string]any{"id": tt.value}}
			if got := rec.ID(); got != tt.want {
				t.Errorf("ID: got %d, want %d", got, tt.want)
			}
		})
	}
}
