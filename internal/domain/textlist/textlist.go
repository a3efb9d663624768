// Package textlist decodes the loosely formatted list and record encodings
// found in the reference tables: "['CS101', 'MA100']", "[CS101, MA100]",
// "{'Dia': 'Lun', 'Hora_inicio': '11:00'}" and lists of such records.
//
// Every decoder tries, in order: a structured parse, a delimiter split, and
// finally gives up with an empty value. Decoders never return errors; an
// empty result is the documented failure value.
package textlist

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParseList decodes a bracketed, comma separated list of strings.
// It returns an empty, non-nil slice when nothing usable is found.
func ParseList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" || strings.EqualFold(s, "nan") {
		return []string{}
	}
	if out, ok := parseQuotedList(s); ok {
		return out
	}
	inner := trimBrackets(s)
	if out, ok := splitCSV(inner); ok {
		return out
	}
	if out, ok := splitPlain(inner); ok {
		return out
	}
	return []string{}
}

// parseQuotedList handles the literal form: brackets around quoted items.
func parseQuotedList(s string) ([]string, bool) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, false
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	out := []string{}
	for i := 0; i < len(inner); {
		i = skipSpace(inner, i)
		if i >= len(inner) {
			break
		}
		q := inner[i]
		if q != '\'' && q != '"' {
			return nil, false
		}
		item, next, ok := readQuoted(inner, i)
		if !ok {
			return nil, false
		}
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
		i = skipSpace(inner, next)
		if i < len(inner) {
			if inner[i] != ',' {
				return nil, false
			}
			i++
		}
	}
	return out, true
}

// readQuoted reads a quoted string starting at s[i] and returns its content
// and the index right after the closing quote.
func readQuoted(s string, i int) (string, int, bool) {
	q := s[i]
	var b strings.Builder
	for j := i + 1; j < len(s); j++ {
		switch c := s[j]; {
		case c == '\\' && j+1 < len(s):
			j++
			b.WriteByte(s[j])
		case c == q:
			return b.String(), j + 1, true
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, false
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return i
}

func trimBrackets(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return strings.TrimSpace(s)
}

// splitCSV splits on commas while honoring double quotes around items that
// contain commas themselves.
func splitCSV(s string) ([]string, bool) {
	r := csv.NewReader(strings.NewReader(s))
	r.TrimLeadingSpace = true
	rec, err := r.Read()
	if err != nil {
		return nil, false
	}
	return clean(rec)
}

func splitPlain(s string) ([]string, bool) {
	return clean(strings.Split(s, ","))
}

// clean strips whitespace and edge quotes and rejects items that still carry
// quoting or bracket characters, which means the input was malformed.
func clean(items []string) ([]string, bool) {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.Trim(strings.TrimSpace(it), `"'`)
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if strings.ContainsAny(it, `[]'"{}`) {
			return nil, false
		}
		out = append(out, it)
	}
	return out, true
}

var recordPair = regexp.MustCompile(`['"]?([\p{L}\w ]+?)['"]?\s*:\s*['"]([^'"]*)['"]`)

// ParseRecord decodes a flat key/value record. Values are returned as
// strings; numbers keep their shortest decimal form. It returns an empty,
// non-nil map when nothing usable is found.
func ParseRecord(s string) map[string]string {
	s = strings.TrimSpace(s)
	if s == "" {
		return map[string]string{}
	}
	if m, ok := decodeObject(s); ok {
		return m
	}
	if m, ok := decodeObject(pyToJSON(s)); ok {
		return m
	}
	out := map[string]string{}
	for _, m := range recordPair.FindAllStringSubmatch(s, -1) {
		out[strings.TrimSpace(m[1])] = m[2]
	}
	return out
}

// ParseRecordList decodes a list of records, either as a literal list of
// objects or as a list of quoted record strings.
func ParseRecordList(s string) []map[string]string {
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return []map[string]string{}
	}
	for _, candidate := range []string{s, pyToJSON(s)} {
		var raw []map[string]any
		if err := json.Unmarshal([]byte(candidate), &raw); err == nil {
			out := make([]map[string]string, 0, len(raw))
			for _, r := range raw {
				out = append(out, stringify(r))
			}
			return out
		}
	}
	out := []map[string]string{}
	items, ok := parseQuotedList(s)
	if !ok {
		return out
	}
	for _, it := range items {
		if rec := ParseRecord(it); len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out
}

func decodeObject(s string) (map[string]string, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, false
	}
	return stringify(raw), true
}

func stringify(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(t)
		}
	}
	return out
}

// pyToJSON rewrites single-quoted strings as double-quoted JSON strings.
func pyToJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote == 0 && (c == '\'' || c == '"'):
			quote = c
			b.WriteByte('"')
		case quote != 0 && c == '\\' && i+1 < len(s):
			b.WriteByte(c)
			i++
			b.WriteByte(s[i])
		case quote != 0 && c == quote:
			quote = 0
			b.WriteByte('"')
		case quote == '\'' && c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
