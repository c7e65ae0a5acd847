package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Source describes how a field value was obtained. Exactly one source per
// result: a field is never both extracted and generated.
type Source string

const (
	// SourceExtracted means the value was taken verbatim from scraped data.
	SourceExtracted Source = "extracted"
	// SourceGenerated means the value was synthesized by the generator.
	SourceGenerated Source = "generated"
	// SourceError means resolution failed; Value is nil.
	SourceError Source = "error"
)

// FieldResult is the outcome of resolving one field for one content item.
// Value is nil iff Source is SourceError.
type FieldResult struct {
	Name   string `json:"name"`
	Value  *Value `json:"value"`
	Source Source `json:"source"`
	Detail string `json:"detail,omitempty"`
}

// ExtractedResult builds a result for a value found directly in scraped data.
func ExtractedResult(name string, value Value) FieldResult {
	return FieldResult{Name: name, Value: &value, Source: SourceExtracted}
}

// GeneratedResult builds a result for a synthesized value.
func GeneratedResult(name, text string) FieldResult {
	v := StringValue(text)
	return FieldResult{Name: name, Value: &v, Source: SourceGenerated}
}

// ErrorResult builds a result marking a failed resolution.
func ErrorResult(name, detail string) FieldResult {
	return FieldResult{Name: name, Value: nil, Source: SourceError, Detail: detail}
}

// ResolvedItem maps field names to their results for one content item,
// preserving field declaration order. Every requested field has an entry:
// partial resolution shows up as SourceError results, never as missing keys.
type ResolvedItem struct {
	order   []string
	results map[string]FieldResult
}

// NewResolvedItem creates an empty resolved item for the given fields.
func NewResolvedItem(fields []Field) *ResolvedItem {
	r := &ResolvedItem{
		order:   make([]string, 0, len(fields)),
		results: make(map[string]FieldResult, len(fields)),
	}
	for _, f := range fields {
		r.order = append(r.order, f.Name)
	}
	return r
}

// Set records the result for its field. Fields not declared at construction
// are appended to the iteration order.
func (r *ResolvedItem) Set(res FieldResult) {
	if r.results == nil {
		r.results = make(map[string]FieldResult)
	}
	known := false
	for _, name := range r.order {
		if name == res.Name {
			known = true
			break
		}
	}
	if !known {
		r.order = append(r.order, res.Name)
	}
	r.results[res.Name] = res
}

// Get returns the result for a field name and whether it is present.
func (r ResolvedItem) Get(name string) (FieldResult, bool) {
	res, ok := r.results[name]
	return res, ok
}

// FieldNames returns field names in declaration order.
func (r ResolvedItem) FieldNames() []string {
	return r.order
}

// Len returns the number of recorded results.
func (r ResolvedItem) Len() int {
	return len(r.results)
}

// MarshalJSON encodes the item as an object of field name to result, in
// declaration order.
func (r ResolvedItem) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, name := range r.order {
		res, ok := r.results[name]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("marshal result %q: %w", name, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of field name to result preserving order.
func (r *ResolvedItem) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("unmarshal resolved item: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("unmarshal resolved item: expected object, got %v", tok)
	}

	r.order = nil
	r.results = make(map[string]FieldResult)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("unmarshal resolved item key: %w", err)
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unmarshal resolved item: non-string key %v", keyTok)
		}
		var res FieldResult
		if err := dec.Decode(&res); err != nil {
			return fmt.Errorf("unmarshal result %q: %w", name, err)
		}
		res.Name = name
		r.Set(res)
	}
	return nil
}
