package avro

import (
	"os"
	"path"
	"testing"

	goavro "github.com/linkedin/goavro/v2"
	"github.com/stretchr/testify/require"

	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

const personSchema = `{
	"type": "record",
	"name": "person",
	"fields": [
		{"name": "id", "type": "long"},
		{"name": "name", "type": "string"},
		{"name": "score", "type": "double"},
		{"name": "nickname", "type": ["null", "string"]}
	]
}`

func writeFile(t *testing.T, records []map[string]interface{}) string {
	p := path.Join(t.TempDir(), "data.avro")
	f, err := os.Create(p)
	require.Nil(t, err)
	ocfw, err := goavro.NewOCFWriter(goavro.OCFConfig{W: f, Schema: personSchema})
	require.Nil(t, err)
	data := make([]interface{}, len(records))
	for i, r := range records {
		data[i] = r
	}
	if len(data) > 0 {
		// goavro writes a zero-count block for an empty Append, which
		// its own OCF reader rejects; an empty file is header-only
		require.Nil(t, ocfw.Append(data))
	}
	require.Nil(t, f.Close())
	return p
}

func TestOpenResolvesSchema(t *testing.T) {
	p := writeFile(t, nil)
	provider, err := Open(p)
	require.Nil(t, err)
	defer provider.Close()

	s := provider.Schema()
	require.Equal(t, 4, s.Len())
	require.Equal(t, schema.Field{Name: "id", Type: schema.Int64}, s.Field(0))
	require.Equal(t, schema.Field{Name: "name", Type: schema.Utf8}, s.Field(1))
	require.Equal(t, schema.Field{Name: "score", Type: schema.Float64}, s.Field(2))

	// the union resolves to its first non-null member
	require.Equal(t, schema.Field{Name: "nickname", Type: schema.Utf8}, s.Field(3))
}

func TestScanBatches(t *testing.T) {
	p := writeFile(t, []map[string]interface{}{
		{"id": int64(1), "name": "alice", "score": 9.5, "nickname": map[string]interface{}{"string": "al"}},
		{"id": int64(2), "name": "bob", "score": 7.0, "nickname": nil},
		{"id": int64(3), "name": "carol", "score": 8.0, "nickname": nil},
	})
	provider, err := Open(p)
	require.Nil(t, err)
	defer provider.Close()

	it, err := provider.Scan(2)
	require.Nil(t, err)
	defer it.Close()

	first, err := it.Next()
	require.Nil(t, err)
	require.Equal(t, 2, first.NumRows())
	require.Equal(t, table.Int64Value(1), first.Rows[0][0])
	require.Equal(t, table.StringValue("alice"), first.Rows[0][1])
	require.Equal(t, table.Float64Value(9.5), first.Rows[0][2])
	require.Equal(t, table.StringValue("al"), first.Rows[0][3])
	require.True(t, first.Rows[1][3].IsNull())

	second, err := it.Next()
	require.Nil(t, err)
	require.Equal(t, 1, second.NumRows())

	end, err := it.Next()
	require.Nil(t, err)
	require.Nil(t, end)
}

func TestScanEmptyFile(t *testing.T) {
	p := writeFile(t, nil)
	provider, err := Open(p)
	require.Nil(t, err)
	defer provider.Close()

	it, err := provider.Scan(10)
	require.Nil(t, err)
	defer it.Close()

	batch, err := it.Next()
	require.Nil(t, err)
	require.Nil(t, batch)
}
