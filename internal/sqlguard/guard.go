// Package sqlguard classifies untrusted SQL text before it is allowed to
// reach the database. It is the single checkpoint between model-generated
// statements and a live connection: a statement must be classified as
// read-only and must reference only allow-listed tables, or it is rejected.
//
// Classification is textual, not structural. A leading read-only prefix plus
// a whole-text scan for mutating keywords defends against the common
// injection shape (benign SELECT with a mutating statement appended). The
// scan is deliberately conservative: a legitimate literal containing a
// denylisted keyword is rejected rather than risk letting an obfuscated
// mutation through.
package sqlguard

import (
	"regexp"
	"strings"
)

// Verdict is the outcome of checking one candidate statement.
type Verdict int

const (
	// Approved means the statement passed both checks and may be executed.
	Approved Verdict = iota
	// RejectedEmpty means no statement was given. A no-op signal, not a failure.
	RejectedEmpty
	// RejectedNotReadOnly means the statement failed read-only classification.
	RejectedNotReadOnly
	// RejectedDisallowedTable means the statement referenced a table outside
	// the allow-list.
	RejectedDisallowedTable
)

func (v Verdict) String() string {
	switch v {
	case Approved:
		return "approved"
	case RejectedEmpty:
		return "rejected_empty"
	case RejectedNotReadOnly:
		return "rejected_not_read_only"
	case RejectedDisallowedTable:
		return "rejected_disallowed_table"
	default:
		return "unknown"
	}
}

// allowedTables is the fixed set of Northwind tables queries may touch.
// Immutable after init; safe for unsynchronized concurrent reads.
var allowedTables = map[string]struct{}{
	"orders":        {},
	"order_details": {},
	"products":      {},
	"categories":    {},
	"customers":     {},
}

// readOnlyPrefixes are the statement kinds treated as read-only. Only a
// leading match counts: a SELECT buried mid-text does not qualify.
var readOnlyPrefixes = []string{"select", "with", "show", "describe", "explain"}

// mutatingKeywords are rejected wherever they appear in the text, including
// inside string literals and comments.
var mutatingKeywords = []string{
	"insert", "update", "delete", "drop", "alter",
	"truncate", "create", "grant", "revoke",
}

var (
	tableKeywordRe = regexp.MustCompile(`\b(from|join)\b`)
	fromTargetRe   = regexp.MustCompile(`\bfrom\s+([a-zA-Z0-9_\.]+)`)
	joinTargetRe   = regexp.MustCompile(`\bjoin\s+([a-zA-Z0-9_\.]+)`)
	quoteStripper  = strings.NewReplacer("`", "", `"`, "")

	allowedTableRes = func() []*regexp.Regexp {
		res := make([]*regexp.Regexp, 0, len(allowedTables))
		for name := range allowedTables {
			res = append(res, regexp.MustCompile(`\b`+regexp.QuoteMeta(name)+`\b`))
		}
		return res
	}()
)

// AllowedTables returns the allow-list as a sorted-independent copy for
// callers that need to report it (prompts, diagnostics).
func AllowedTables() []string {
	names := make([]string, 0, len(allowedTables))
	for name := range allowedTables {
		names = append(names, name)
	}
	return names
}

// IsReadOnly reports whether the statement starts with a read-only prefix and
// contains no mutating keyword anywhere in its text.
func IsReadOnly(sql string) bool {
	normalized := strings.ToLower(strings.TrimSpace(sql))
	if normalized == "" {
		return false
	}

	prefixed := false
	for _, prefix := range readOnlyPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			prefixed = true
			break
		}
	}
	if !prefixed {
		return false
	}

	for _, keyword := range mutatingKeywords {
		if strings.Contains(normalized, keyword) {
			return false
		}
	}
	return true
}

// OnlyAllowedTables reports whether every table referenced after a FROM or
// JOIN keyword is in the allow-list. Identifiers are compared by their final
// dot segment so schema-qualified names like northwind.orders pass. The
// extraction is textual and uniform, so tables hidden in subqueries or CTEs
// are checked the same as top-level references.
func OnlyAllowedTables(sql string) bool {
	if strings.TrimSpace(sql) == "" {
		return false
	}
	normalized := quoteStripper.Replace(strings.ToLower(sql))

	if tableKeywordRe.MatchString(normalized) && !mentionsAllowedTable(normalized) {
		return false
	}

	targets := fromTargetRe.FindAllStringSubmatch(normalized, -1)
	targets = append(targets, joinTargetRe.FindAllStringSubmatch(normalized, -1)...)
	for _, match := range targets {
		name := match[1]
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			name = name[idx+1:]
		}
		if _, ok := allowedTables[name]; !ok {
			return false
		}
	}
	return true
}

func mentionsAllowedTable(normalized string) bool {
	for _, re := range allowedTableRes {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// Check runs both classifications and returns a single verdict. Pure and
// deterministic: the same statement always yields the same verdict.
func Check(sql string) Verdict {
	if strings.TrimSpace(sql) == "" {
		return RejectedEmpty
	}
	if !IsReadOnly(sql) {
		return RejectedNotReadOnly
	}
	if !OnlyAllowedTables(sql) {
		return RejectedDisallowedTable
	}
	return Approved
}
