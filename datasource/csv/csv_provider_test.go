package csv

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

func writeFile(t *testing.T, contents string) string {
	p := path.Join(t.TempDir(), "data.csv")
	require.Nil(t, os.WriteFile(p, []byte(contents), 0644))
	return p
}

func TestOpenInfersSchemaFromHeaderAndSample(t *testing.T) {
	p := writeFile(t, "id,score,active,name\n1,9.5,true,alice\n")
	provider, err := Open(p, &Conf{HasHeader: true})
	require.Nil(t, err)
	defer provider.Close()

	s := provider.Schema()
	require.Equal(t, 4, s.Len())
	require.Equal(t, schema.Field{Name: "id", Type: schema.Int64}, s.Field(0))
	require.Equal(t, schema.Field{Name: "score", Type: schema.Float64}, s.Field(1))
	require.Equal(t, schema.Field{Name: "active", Type: schema.Bool}, s.Field(2))
	require.Equal(t, schema.Field{Name: "name", Type: schema.Utf8}, s.Field(3))
}

func TestOpenWithoutHeaderNamesColumnsPositionally(t *testing.T) {
	p := writeFile(t, "1,alice\n2,bob\n")
	provider, err := Open(p, &Conf{HasHeader: false})
	require.Nil(t, err)
	defer provider.Close()

	s := provider.Schema()
	require.Equal(t, "c0", s.Field(0).Name)
	require.Equal(t, "c1", s.Field(1).Name)
	require.Equal(t, schema.Int64, s.Field(0).Type)
}

func TestOpenEmptyFile(t *testing.T) {
	p := writeFile(t, "")
	provider, err := Open(p, nil)
	require.Nil(t, err)
	defer provider.Close()
	require.Equal(t, 0, provider.Schema().Len())
}

func TestScanBatches(t *testing.T) {
	p := writeFile(t, "id,name\n1,alice\n2,bob\n3,carol\n")
	provider, err := Open(p, nil)
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

	second, err := it.Next()
	require.Nil(t, err)
	require.Equal(t, 1, second.NumRows())

	end, err := it.Next()
	require.Nil(t, err)
	require.Nil(t, end)
}

func TestScanTwice(t *testing.T) {
	p := writeFile(t, "id\n1\n2\n")
	provider, err := Open(p, nil)
	require.Nil(t, err)
	defer provider.Close()

	for i := 0; i < 2; i++ {
		it, err := provider.Scan(10)
		require.Nil(t, err)
		batch, err := it.Next()
		require.Nil(t, err)
		require.Equal(t, 2, batch.NumRows())
		require.Nil(t, it.Close())
	}
}

func TestScanUnparsableCellYieldsNull(t *testing.T) {
	p := writeFile(t, "id,score\n1,2.5\nnope,\n")
	provider, err := Open(p, nil)
	require.Nil(t, err)
	defer provider.Close()

	it, err := provider.Scan(10)
	require.Nil(t, err)
	defer it.Close()

	batch, err := it.Next()
	require.Nil(t, err)
	require.Equal(t, 2, batch.NumRows())
	require.True(t, batch.Rows[1][0].IsNull())
	require.True(t, batch.Rows[1][1].IsNull())
}

func TestNewProviderSkipsInference(t *testing.T) {
	p := writeFile(t, "1,alice\n2,bob\n")
	declared := schema.NewSchema([]schema.Field{
		{Name: "id", Type: schema.Utf8},
		{Name: "name", Type: schema.Utf8},
	})
	provider := NewProvider(p, &Conf{HasHeader: false}, declared)
	defer provider.Close()
	require.True(t, provider.Schema().Equal(declared))

	it, err := provider.Scan(10)
	require.Nil(t, err)
	defer it.Close()

	batch, err := it.Next()
	require.Nil(t, err)
	require.Equal(t, 2, batch.NumRows())
	require.Equal(t, table.StringValue("1"), batch.Rows[0][0])
	require.Equal(t, table.StringValue("alice"), batch.Rows[0][1])
}

func TestCustomDelimiter(t *testing.T) {
	p := writeFile(t, "id|name\n1|alice\n")
	provider, err := Open(p, &Conf{HasHeader: true, Comma: '|'})
	require.Nil(t, err)
	defer provider.Close()

	require.Equal(t, "name", provider.Schema().Field(1).Name)
	it, err := provider.Scan(10)
	require.Nil(t, err)
	defer it.Close()
	batch, err := it.Next()
	require.Nil(t, err)
	require.Equal(t, table.StringValue("alice"), batch.Rows[0][1])
}
