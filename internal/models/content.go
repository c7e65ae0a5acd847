// Package models defines data structures for the contentd retrieval engine.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field identifies a unit of information to resolve for every content item.
// Fields are unique within a task; their declaration order (as produced by
// instruction parsing) determines column order in the final table.
type Field struct {
	Name string `json:"name"`
}

// FieldList builds a de-duplicated, order-preserving field list from raw names.
// Empty names are skipped.
func FieldList(names []string) []Field {
	seen := make(map[string]bool, len(names))
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, Field{Name: name})
	}
	return fields
}

// Value is a single scraped value: a string, a list of strings, or null.
// Scraped data is schemaless but the engine only ever sees this closed set.
type Value struct {
	Str  *string
	List []string
}

// StringValue wraps a plain string.
func StringValue(s string) Value {
	return Value{Str: &s}
}

// ListValue wraps a list of strings.
func ListValue(items []string) Value {
	return Value{List: items}
}

// IsEmpty reports whether the value carries no usable content.
func (v Value) IsEmpty() bool {
	if v.Str != nil {
		return *v.Str == ""
	}
	return len(v.List) == 0
}

// Text returns a flat string rendering of the value for prompts and queries.
func (v Value) Text() string {
	if v.Str != nil {
		return *v.Str
	}
	if len(v.List) > 0 {
		return v.List[0]
	}
	return ""
}

// MarshalJSON encodes the value as a string, array, or null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Str != nil {
		return json.Marshal(*v.Str)
	}
	if v.List != nil {
		return json.Marshal(v.List)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes a string, array of strings, or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*v = Value{}
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []string
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return fmt.Errorf("unmarshal value list: %w", err)
		}
		*v = Value{List: list}
		return nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return fmt.Errorf("unmarshal value: %w", err)
	}
	*v = Value{Str: &s}
	return nil
}

// ContentItem is one scraped unit: an immutable, insertion-ordered mapping of
// raw key to value. Insertion order is preserved so table column order stays
// deterministic across runs.
type ContentItem struct {
	keys   []string
	values map[string]Value
}

// NewContentItem creates an empty content item.
func NewContentItem() *ContentItem {
	return &ContentItem{values: make(map[string]Value)}
}

// Set stores a value under key, appending the key on first insertion.
func (c *ContentItem) Set(key string, value Value) {
	if c.values == nil {
		c.values = make(map[string]Value)
	}
	if _, exists := c.values[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the value for key and whether it is present.
func (c *ContentItem) Get(key string) (Value, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (c *ContentItem) Keys() []string {
	return c.keys
}

// Len returns the number of keys.
func (c *ContentItem) Len() int {
	return len(c.keys)
}

// titlePreference lists keys tried first when picking a title-like value for
// search queries.
var titlePreference = []string{"title", "name", "heading", "headline"}

// TitleLike returns the best available title-like value for building search
// queries: a preferred key if present, otherwise the first non-empty string
// value, otherwise "".
func (c *ContentItem) TitleLike() string {
	for _, key := range titlePreference {
		if v, ok := c.values[key]; ok && v.Str != nil && *v.Str != "" {
			return *v.Str
		}
	}
	for _, key := range c.keys {
		if v := c.values[key]; v.Str != nil && *v.Str != "" {
			return *v.Str
		}
	}
	return ""
}

// MarshalJSON encodes the item as a JSON object in insertion order.
func (c ContentItem) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(c.values[key])
		if err != nil {
			return nil, fmt.Errorf("marshal item key %q: %w", key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (c *ContentItem) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("unmarshal item: expected object, got %v", tok)
	}

	*c = *NewContentItem()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("unmarshal item key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unmarshal item: non-string key %v", keyTok)
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("unmarshal item key %q: %w", key, err)
		}
		c.Set(key, v)
	}
	return nil
}
