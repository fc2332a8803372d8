package nlq

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	trailingPunctRe = regexp.MustCompile(`[.!?]+$`)
	fencedJSONRe    = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	sqlFenceRe      = regexp.MustCompile("```sql|```")
)

// NormalizeQuestion trims the question and strips trailing punctuation runs.
func NormalizeQuestion(text string) string {
	return trailingPunctRe.ReplaceAllString(strings.TrimSpace(text), "")
}

// tableNameFixes corrects the table-name mistakes models make most often
// against this schema.
var tableNameFixes = []struct{ wrong, correct string }{
	{"`order details`", "order_details"},
	{"`Order Details`", "order_details"},
	{"[order details]", "order_details"},
	{"'order details'", "order_details"},
	{"Order Details", "order_details"},
	{"order details", "order_details"},
}

// NormalizeSQL repairs common model output defects: markdown fences and
// malformed order_details references.
func NormalizeSQL(sql string) string {
	for _, fix := range tableNameFixes {
		sql = strings.ReplaceAll(sql, fix.wrong, fix.correct)
	}
	return strings.TrimSpace(sqlFenceRe.ReplaceAllString(sql, ""))
}

// extractJSON finds a JSON object in model text and unmarshals it into dst.
// It tries the whole text, then the outermost brace slice, then fenced
// ```json blocks.
func extractJSON(text string, dst any) bool {
	if json.Unmarshal([]byte(text), dst) == nil {
		return true
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		if json.Unmarshal([]byte(text[start:end+1]), dst) == nil {
			return true
		}
	}

	if match := fencedJSONRe.FindStringSubmatch(text); match != nil {
		if json.Unmarshal([]byte(match[1]), dst) == nil {
			return true
		}
	}
	return false
}
