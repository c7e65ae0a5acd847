package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldList(t *testing.T) {
	fields := FieldList([]string{"title", "price", "title", "", "rating"})

	require.Len(t, fields, 3)
	assert.Equal(t, "title", fields[0].Name)
	assert.Equal(t, "price", fields[1].Name)
	assert.Equal(t, "rating", fields[2].Name)
}

func TestValueJSON(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"string", StringValue("hello"), `"hello"`},
		{"empty string", StringValue(""), `""`},
		{"list", ListValue([]string{"a", "b"}), `["a","b"]`},
		{"null", Value{}, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(encoded))

			var decoded Value
			require.NoError(t, json.Unmarshal(encoded, &decoded))
			assert.Equal(t, tt.value.IsEmpty(), decoded.IsEmpty())
			assert.Equal(t, tt.value.Text(), decoded.Text())
		})
	}
}

func TestValueUnmarshalRejectsObjects(t *testing.T) {
	var v Value
	err := v.UnmarshalJSON([]byte(`{"nested": true}`))
	assert.Error(t, err)
}

func TestValueText(t *testing.T) {
	assert.Equal(t, "hello", StringValue("hello").Text())
	assert.Equal(t, "first", ListValue([]string{"first", "second"}).Text())
	assert.Equal(t, "", Value{}.Text())
}

func TestContentItemPreservesInsertionOrder(t *testing.T) {
	item := NewContentItem()
	item.Set("zeta", StringValue("z"))
	item.Set("alpha", StringValue("a"))
	item.Set("mid", StringValue("m"))
	item.Set("alpha", StringValue("a2")) // overwrite keeps position

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, item.Keys())

	v, ok := item.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, "a2", v.Text())

	encoded, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"z","alpha":"a2","mid":"m"}`, string(encoded))

	var decoded ContentItem
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, item.Keys(), decoded.Keys())
}

func TestContentItemTitleLike(t *testing.T) {
	item := NewContentItem()
	item.Set("description", StringValue("a long description"))
	item.Set("name", StringValue("Widget"))

	// preferred key wins over earlier insertion
	assert.Equal(t, "Widget", item.TitleLike())

	noTitle := NewContentItem()
	noTitle.Set("urls", ListValue([]string{"http://x"}))
	noTitle.Set("summary", StringValue("fallback"))
	assert.Equal(t, "fallback", noTitle.TitleLike())

	assert.Equal(t, "", NewContentItem().TitleLike())
}
