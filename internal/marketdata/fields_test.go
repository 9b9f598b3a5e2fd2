package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vivek1819/FinBoard/internal/models"
)

func TestExtractFieldsNestedAndArrays(t *testing.T) {
	raw := []byte(`{"a":{"b":1,"c":"s"},"d":[{"e":true}]}`)

	got := ExtractFields(raw)

	want := []models.Field{
		{Path: "a.b", Type: "number"},
		{Path: "a.c", Type: "string"},
		{Path: "d.e", Type: "boolean"},
	}
	assert.Equal(t, want, got)
}

func TestExtractFieldsDeterministic(t *testing.T) {
	raw := []byte(`{"z":1,"a":{"m":"x","k":2},"list":[{"q":false},{"ignored":1}]}`)

	first := ExtractFields(raw)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractFields(raw))
	}
}

func TestExtractFieldsTopLevelArraySamplesFirstElement(t *testing.T) {
	raw := []byte(`[{"symbol":"btc","current_price":65000.12},{"symbol":"eth"}]`)

	got := ExtractFields(raw)

	want := []models.Field{
		{Path: "symbol", Type: "string"},
		{Path: "current_price", Type: "number"},
	}
	assert.Equal(t, want, got)
}

func TestExtractFieldsSkipsNulls(t *testing.T) {
	got := ExtractFields([]byte(`{"a":null,"b":{"c":null,"d":1}}`))

	assert.Equal(t, []models.Field{{Path: "b.d", Type: "number"}}, got)
}

func TestExtractFieldsEdgeCases(t *testing.T) {
	assert.Empty(t, ExtractFields([]byte(`{}`)))
	assert.Empty(t, ExtractFields([]byte(`[]`)))
	assert.Empty(t, ExtractFields([]byte(`not json`)))
	assert.Empty(t, ExtractFields(nil))
	// scalar root has no addressable fields
	assert.Empty(t, ExtractFields([]byte(`42`)))
}

func TestLookup(t *testing.T) {
	raw := []byte(`{"a":{"b":{"c":12.5}},"s":"hi"}`)

	v, ok := Lookup(raw, "a.b.c")
	require.True(t, ok)
	assert.Equal(t, 12.5, v.Float())

	v, ok = Lookup(raw, "s")
	require.True(t, ok)
	assert.Equal(t, "hi", v.String())

	_, ok = Lookup(raw, "a.b.missing")
	assert.False(t, ok)

	// absent intermediate key short-circuits instead of failing
	_, ok = Lookup(raw, "x.y.z")
	assert.False(t, ok)
}
