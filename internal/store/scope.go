package store

import (
	"fmt"
	"strconv"
	"strings"
)

// ScopeMode selects the query mode encoded in a scope expression.
type ScopeMode int

// Supported scope modes.
const (
	// ModeListing is a plain listing of one or more content types.
	ModeListing ScopeMode = iota

	// ModeLatest returns the newest published records.
	ModeLatest

	// ModeFirst returns the oldest published records.
	ModeFirst

	// ModeRandom returns a random selection of records.
	ModeRandom

	// ModeSingle returns a single record addressed by slug or id.
	ModeSingle
)

// Scope is a parsed scope expression.
type Scope struct {
	// Types are the content type slugs the scope covers, in expression
	// order.
	Types []string

	// Mode is the query mode.
	Mode ScopeMode

	// Amount is the record count for latest/first/random modes.
	Amount int

	// SlugOrID addresses the record in single mode.
	SlugOrID string
}

// ParseScope parses a store scope expression. The grammar matches the
// expressions the dispatcher builds:
//
//	articles                    one content type
//	(articles,pages)            several content types
//	articles/latest/5           the five newest records
//	articles/first/5            the five oldest records
//	(articles,pages)/random/10  ten random records
//	articles/hello-world        a single record by slug or id
func ParseScope(expr string) (Scope, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Scope{}, fmt.Errorf("empty scope expression")
	}

	var scope Scope
	rest := expr

	if strings.HasPrefix(rest, "(") {
		end := strings.Index(rest, ")")
		if end < 0 {
			return Scope{}, fmt.Errorf("unterminated type list in scope %q", expr)
		}
		for _, t := range strings.Split(rest[1:end], ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				scope.Types = append(scope.Types, t)
			}
		}
		rest = rest[end+1:]
	} else {
		slash := strings.Index(rest, "/")
		if slash < 0 {
			scope.Types = []string{rest}
			rest = ""
		} else {
			scope.Types = []string{rest[:slash]}
			rest = rest[slash:]
		}
	}

	if len(scope.Types) == 0 {
		return Scope{}, fmt.Errorf("scope %q names no content types", expr)
	}

	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		scope.Mode = ModeListing
		return scope, nil
	}

	parts := strings.SplitN(rest, "/", 2)

	switch parts[0] {
	case "latest", "first", "random":
		if len(parts) != 2 {
			return Scope{}, fmt.Errorf("scope %q: %s needs an amount", expr, parts[0])
		}
		amount, err := strconv.Atoi(parts[1])
		if err != nil || amount <= 0 {
			return Scope{}, fmt.Errorf("scope %q: invalid amount %q", expr, parts[1])
		}
		scope.Amount = amount
		switch parts[0] {
		case "latest":
			scope.Mode = ModeLatest
		case "first":
			scope.Mode = ModeFirst
		default:
			scope.Mode = ModeRandom
		}
	default:
		if len(parts) == 2 {
			return Scope{}, fmt.Errorf("scope %q: unexpected trailing segment", expr)
		}
		if len(scope.Types) != 1 {
			return Scope{}, fmt.Errorf("scope %q: single record lookup needs exactly one type", expr)
		}
		scope.Mode = ModeSingle
		scope.SlugOrID = parts[0]
	}

	return scope, nil
}
