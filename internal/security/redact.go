package security

import (
	"fmt"
	"regexp"
	"strings"

	"repolens/internal/config"
)

type redactFilter struct {
	pattern *regexp.Regexp
	prefix  string
}

var (
	emailFilter = redactFilter{
		pattern: regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
		prefix:  "EMAIL",
	}
	tokenFilters = []redactFilter{
		{regexp.MustCompile(`\b(?:ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{36,}\b`), "GITHUB_TOKEN"},
		{regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{22,}\b`), "GITHUB_TOKEN"},
		{regexp.MustCompile(`\bsk-(?:ant-)?[A-Za-z0-9_-]{20,}\b`), "API_KEY"},
		{regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`), "AWS_KEY"},
		{regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z ]*PRIVATE KEY-----`), "PRIVATE_KEY"},
	}
)

// Redactor masks emails and credential-looking strings in tool output
// before it is sent to the completion endpoint. It holds only compiled
// patterns; placeholder mappings live in a Redaction.
type Redactor struct {
	filters []redactFilter
}

// NewRedactor builds a redactor from config. A disabled config yields a
// redactor that passes text through unchanged.
func NewRedactor(cfg config.RedactionConfig) *Redactor {
	r := &Redactor{}
	if !cfg.Enabled {
		return r
	}
	if cfg.RedactTokens {
		r.filters = append(r.filters, tokenFilters...)
	}
	if cfg.RedactEmails {
		r.filters = append(r.filters, emailFilter)
	}
	return r
}

// Begin starts a redaction scope for one query.
func (r *Redactor) Begin() *Redaction {
	var filters []redactFilter
	if r != nil {
		filters = r.filters
	}
	return &Redaction{
		filters:  filters,
		mappings: make(map[string]string),
		reverse:  make(map[string]string),
		counter:  make(map[string]int),
	}
}

// Redaction maps placeholders back to the values they replaced.
// Not safe for concurrent use.
type Redaction struct {
	filters  []redactFilter
	mappings map[string]string // placeholder -> original
	reverse  map[string]string // original -> placeholder
	counter  map[string]int
}

// Sanitize replaces sensitive values with stable placeholders.
func (s *Redaction) Sanitize(text string) string {
	result := text
	for _, f := range s.filters {
		result = f.pattern.ReplaceAllStringFunc(result, func(match string) string {
			if p, ok := s.reverse[match]; ok {
				return p
			}
			s.counter[f.prefix]++
			placeholder := fmt.Sprintf("[%s_%d]", f.prefix, s.counter[f.prefix])
			s.mappings[placeholder] = match
			s.reverse[match] = placeholder
			return placeholder
		})
	}
	return result
}

// Restore puts original emails back into text. Credentials stay masked.
func (s *Redaction) Restore(text string) string {
	if len(s.mappings) == 0 {
		return text
	}
	pairs := make([]string, 0, len(s.mappings)*2)
	for placeholder, original := range s.mappings {
		if strings.HasPrefix(placeholder, "["+emailFilter.prefix+"_") {
			pairs = append(pairs, placeholder, original)
		}
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Count returns how many distinct values were redacted.
func (s *Redaction) Count() int {
	return len(s.mappings)
}
