package schema_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/monorel/monorel/internal/errors"
	"github.com/monorel/monorel/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name   string `json:"name" jsonschema:"minLength=1"`
	Kind   string `json:"kind" jsonschema:"enum=a,enum=b"`
	Detail string `json:"detail,omitempty"`
}

func TestValidate(t *testing.T) {
	t.Parallel()

	s := schema.Array("entries", "Entries", "Test entries", &entry{})

	tests := []struct {
		name     string
		document string
		valid    bool
	}{
		{
			name:     "empty array",
			document: `[]`,
			valid:    true,
		},
		{
			name:     "optional field omitted",
			document: `[{"name":"x","kind":"a"}]`,
			valid:    true,
		},
		{
			name:     "optional field set",
			document: `[{"name":"x","kind":"b","detail":"d"}]`,
			valid:    true,
		},
		{
			name:     "missing required field",
			document: `[{"name":"x"}]`,
		},
		{
			name:     "value outside enum",
			document: `[{"name":"x","kind":"c"}]`,
		},
		{
			name:     "unknown field",
			document: `[{"name":"x","kind":"a","extra":1}]`,
		},
		{
			name:     "empty name",
			document: `[{"name":"","kind":"a"}]`,
		},
		{
			name:     "object instead of array",
			document: `{"name":"x","kind":"a"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := schema.Validate(s, []byte(tt.document))
			if tt.valid {
				require.NoError(t, err)
				return
			}

			var validationErr *schema.ValidationError
			require.True(t, errors.As(err, &validationErr), "expected a validation error, got %v", err)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, schema.Write(&buf, schema.Array("entries", "Entries", "Test entries", &entry{})))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "array", doc["type"])
	assert.Equal(t, schema.BaseID+"entries/schema.json", doc["$id"])

	items, ok := doc["items"].(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"name", "kind"}, items["required"])
}
