package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/OMERKURIEL/etl-assignment/internal/config"
	"github.com/OMERKURIEL/etl-assignment/internal/model"
	"github.com/OMERKURIEL/etl-assignment/pkg/utils"
)

const dateLayout = "2006-01-02"

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindDate
	kindEnum
	kindUUID
	kindStringList
	kindBirthDate
)

// fieldRule is one declarative schema entry. Rules never abort validation;
// every rule runs and every problem becomes an issue.
type fieldRule struct {
	name     string // dotted path into the record
	kind     fieldKind
	required bool
	min, max float64  // numeric bounds, used by kindNumber
	enum     []string // accepted values, used by kindEnum
}

func schemaRules() []fieldRule {
	return []fieldRule{
		{name: "participant_id", kind: kindUUID, required: true},
		{name: "sample_type", kind: kindEnum, required: true, enum: []string{"blood", "saliva", "tissue"}},
		{name: "requested_by", kind: kindString, required: true},
		{name: "collection_date", kind: kindDate, required: true},
		{name: "date_requested", kind: kindDate, required: true},
		{name: "date_completed", kind: kindDate, required: true},
		{name: "coverage_depth", kind: kindNumber, required: false, min: 1, max: 100},
		{name: "sequence_files", kind: kindStringList, required: true},
		{name: "individual_metadata.date_of_birth", kind: kindBirthDate, required: true},
	}
}

// ValidateMetadata normalizes a decoded metadata document and checks it
// against the schema. Sensitive keys (prefixed with "_") are stripped and
// strings trimmed before any rule runs. All issues found are returned
// together; validation never stops at the first problem.
func ValidateMetadata(raw map[string]interface{}, policy config.Policy) (model.MetadataRecord, []model.ValidationIssue) {
	record := normalize(raw)
	collector := &model.IssueCollector{}

	for _, rule := range schemaRules() {
		applyRule(record, rule, policy, collector)
	}
	checkFieldLengths(record, "", policy.MaxFieldLength, collector)

	return record, collector.Issues()
}

func applyRule(record model.MetadataRecord, rule fieldRule, policy config.Policy, c *model.IssueCollector) {
	val, ok := lookupPath(record, rule.name)
	if !ok || val == nil {
		if rule.required {
			c.Addf(rule.name, model.IssueMissingField, "required field %s is missing", rule.name)
		}
		return
	}

	switch rule.kind {
	case kindString:
		if _, isStr := val.(string); !isStr {
			c.Addf(rule.name, model.IssueTypeMismatch, "field %s must be a string, got %T", rule.name, val)
		}

	case kindUUID:
		s, isStr := val.(string)
		if !isStr {
			c.Addf(rule.name, model.IssueTypeMismatch, "field %s must be a UUID string, got %T", rule.name, val)
			return
		}
		if _, err := uuid.Parse(s); err != nil {
			c.Addf(rule.name, model.IssueTypeMismatch, "field %s is not a valid UUID: %q", rule.name, s)
		}

	case kindEnum:
		s, isStr := val.(string)
		if !isStr {
			c.Addf(rule.name, model.IssueTypeMismatch, "field %s must be a string, got %T", rule.name, val)
			return
		}
		lower := strings.ToLower(s)
		for _, allowed := range rule.enum {
			if lower == allowed {
				storePath(record, rule.name, lower)
				return
			}
		}
		c.Addf(rule.name, model.IssueOutOfRange, "field %s has value %q, expected one of %v", rule.name, s, rule.enum)

	case kindNumber:
		f, numeric := utils.ToFloat(val)
		if !numeric {
			c.Addf(rule.name, model.IssueTypeMismatch, "field %s must be numeric, got %T", rule.name, val)
			return
		}
		if s, wasString := val.(string); wasString {
			// Numeric string: recover the value but keep a record of the
			// mismatch so the file-set is reported as partial.
			coerced := utils.ParseValue(s)
			storePath(record, rule.name, coerced)
			c.Add(model.ValidationIssue{
				Field:   rule.name,
				Code:    model.IssueTypeMismatch,
				Message: fmt.Sprintf("field %s was a numeric string %q, coerced to %v", rule.name, s, coerced),
				Coerced: true,
			})
		}
		if f < rule.min || f > rule.max {
			c.Addf(rule.name, model.IssueOutOfRange, "field %s value %v outside range [%v, %v]", rule.name, f, rule.min, rule.max)
		}

	case kindDate:
		t, issue := parseDateField(rule.name, val, c)
		if issue {
			return
		}
		min, max := policy.DateBounds()
		if t.Before(min) || t.After(max) {
			c.Addf(rule.name, model.IssueOutOfRange, "field %s date %s outside range [%s, %s]",
				rule.name, t.Format(dateLayout), min.Format(dateLayout), max.Format(dateLayout))
		}

	case kindBirthDate:
		t, issue := parseDateField(rule.name, val, c)
		if issue {
			return
		}
		age := int(time.Since(t).Hours() / 24 / 365)
		if age < policy.MinAge {
			c.Addf(rule.name, model.IssueOutOfRange, "participant age %d is below the minimum of %d", age, policy.MinAge)
		}

	case kindStringList:
		list, isList := val.([]interface{})
		if !isList {
			c.Addf(rule.name, model.IssueTypeMismatch, "field %s must be a list of strings, got %T", rule.name, val)
			return
		}
		if len(list) == 0 {
			c.Addf(rule.name, model.IssueMissingField, "field %s must name at least one file", rule.name)
			return
		}
		for i, item := range list {
			if _, isStr := item.(string); !isStr {
				c.Addf(rule.name, model.IssueTypeMismatch, "field %s[%d] must be a string, got %T", rule.name, i, item)
			}
		}
	}
}

func parseDateField(name string, val interface{}, c *model.IssueCollector) (time.Time, bool) {
	s, isStr := val.(string)
	if !isStr {
		c.Addf(name, model.IssueTypeMismatch, "field %s must be a date string, got %T", name, val)
		return time.Time{}, true
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		c.Addf(name, model.IssueTypeMismatch, "field %s is not a valid date: %q", name, s)
		return time.Time{}, true
	}
	return t, false
}

// normalize deep-copies the document, dropping sensitive keys (any key
// starting with "_") at every level and trimming string values. Unknown
// fields survive untouched.
func normalize(raw map[string]interface{}) model.MetadataRecord {
	out := make(model.MetadataRecord, len(raw))
	for k, v := range raw {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return map[string]interface{}(normalize(val))
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case string:
		return strings.TrimSpace(val)
	default:
		return v
	}
}

// checkFieldLengths walks the whole record and flags any string value longer
// than the configured maximum, including values inside unknown fields.
func checkFieldLengths(v interface{}, path string, max int, c *model.IssueCollector) {
	switch val := v.(type) {
	case model.MetadataRecord:
		checkFieldLengths(map[string]interface{}(val), path, max, c)
	case map[string]interface{}:
		for k, child := range val {
			childPath := k
			if path != "" {
				childPath = path + "." + k
			}
			checkFieldLengths(child, childPath, max, c)
		}
	case []interface{}:
		for i, child := range val {
			checkFieldLengths(child, fmt.Sprintf("%s[%d]", path, i), max, c)
		}
	case string:
		if len(val) > max {
			c.Addf(path, model.IssueOutOfRange, "field %s exceeds %d characters (got %d)", path, max, len(val))
		}
	}
}

// lookupPath resolves a dotted path like "individual_metadata.date_of_birth".
func lookupPath(record map[string]interface{}, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = record
	for _, part := range parts {
		m, ok := toMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// storePath writes a value back at a dotted path. Missing intermediate maps
// make it a no-op; the lookup already reported those.
func storePath(record map[string]interface{}, path string, value interface{}) {
	parts := strings.Split(path, ".")
	var cur interface{} = record
	for _, part := range parts[:len(parts)-1] {
		m, ok := toMap(cur)
		if !ok {
			return
		}
		cur, ok = m[part]
		if !ok {
			return
		}
	}
	if m, ok := toMap(cur); ok {
		m[parts[len(parts)-1]] = value
	}
}

func toMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case model.MetadataRecord:
		return m, true
	}
	return nil, false
}
