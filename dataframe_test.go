package brig

import (
	"context"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-brig/brig/errors"
	"github.com/go-brig/brig/logical"
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

func testBatch(t *testing.T) table.Batch {
	s := schema.NewSchema([]schema.Field{
		{Name: "id", Type: schema.Int64},
		{Name: "name", Type: schema.Utf8},
	})
	b, err := table.NewBatch(s, [][]table.Scalar{
		{table.Int64Value(1), table.StringValue("alice")},
		{table.Int64Value(2), table.StringValue("bob")},
		{table.Int64Value(3), table.StringValue("carol")},
	})
	require.Nil(t, err)
	return b
}

func writeTestCSV(t *testing.T, rows string) string {
	p := path.Join(t.TempDir(), "people.csv")
	require.Nil(t, os.WriteFile(p, []byte(rows), 0644))
	return p
}

func TestBuilderChaining(t *testing.T) {
	ctx := Local(nil)
	df, err := ctx.CreateDataFrame([]table.Batch{testBatch(t)})
	require.Nil(t, err)
	require.Equal(t, 2, df.Schema().Len())

	projected, err := df.Project([]logical.Expr{logical.Col(1)})
	require.Nil(t, err)
	require.Equal(t, 1, projected.Schema().Len())
	require.Equal(t, "name", projected.Schema().Field(0).Name)

	limited, err := projected.Limit(2)
	require.Nil(t, err)
	require.True(t, limited.Schema().Equal(projected.Schema()))
}

func TestDerivationLeavesParentUnchanged(t *testing.T) {
	ctx := Local(nil)
	df, err := ctx.CreateDataFrame([]table.Batch{testBatch(t)})
	require.Nil(t, err)
	basePlan := df.LogicalPlan()

	filtered, err := df.Filter(logical.Col(0))
	require.Nil(t, err)
	require.Equal(t, basePlan, df.LogicalPlan())

	sel, ok := filtered.LogicalPlan().(*logical.Selection)
	require.True(t, ok)
	require.Equal(t, basePlan, sel.Input)
}

func TestWriteNotImplemented(t *testing.T) {
	contexts := map[string]*Context{
		"local":  Local(nil),
		"remote": Remote("executor.internal", 50051, nil),
		"spark":  Spark("local[4]", nil),
	}
	for name, ctx := range contexts {
		t.Run(name, func(t *testing.T) {
			df := Empty(ctx.State())
			var notImpl *errors.NotImplementedError
			require.ErrorAs(t, df.WriteCSV("/tmp/out.csv"), &notImpl)
			require.Equal(t, "write_csv()", notImpl.Op)
			require.ErrorAs(t, df.WriteParquet("/tmp/out.parquet"), &notImpl)
			require.Equal(t, "write_parquet()", notImpl.Op)
		})
	}
}

func TestSparkCollectRequiresHostAndPort(t *testing.T) {
	df := Empty(Spark("local[4]", nil).State())
	_, err := df.Collect(context.Background())
	var confErr *errors.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, SparkHostKey, confErr.Key)

	df = Empty(Spark("local[4]", map[string]string{SparkHostKey: "localhost"}).State())
	_, err = df.Collect(context.Background())
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, SparkPortKey, confErr.Key)
}

func TestSparkCollectRejectsBadPort(t *testing.T) {
	df := Empty(Spark("local[4]", map[string]string{
		SparkHostKey: "localhost",
		SparkPortKey: "not-a-port",
	}).State())
	_, err := df.Collect(context.Background())
	var confErr *errors.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, SparkPortKey, confErr.Key)
}

func TestLocalCollectRejectsBadBatchSize(t *testing.T) {
	ctx := Local(map[string]string{CSVBatchSizeKey: "huge"})
	df, err := ctx.CreateDataFrame([]table.Batch{testBatch(t)})
	require.Nil(t, err)
	_, err = df.Collect(context.Background())
	var confErr *errors.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, CSVBatchSizeKey, confErr.Key)
}

func TestLocalCollectMemory(t *testing.T) {
	ctx := Local(nil)
	df, err := ctx.CreateDataFrame([]table.Batch{testBatch(t)})
	require.Nil(t, err)
	df, err = df.Project([]logical.Expr{logical.Col(1), logical.Col(0)})
	require.Nil(t, err)
	df, err = df.Limit(2)
	require.Nil(t, err)

	batches, err := df.Collect(context.Background())
	require.Nil(t, err)

	var rows [][]table.Scalar
	for _, b := range batches {
		rows = append(rows, b.Rows...)
	}
	require.Equal(t, 2, len(rows))
	require.Equal(t, table.StringValue("alice"), rows[0][0])
	require.Equal(t, table.Int64Value(1), rows[0][1])
	require.Equal(t, table.StringValue("bob"), rows[1][0])
}

func TestLocalCollectCSVBatchSize(t *testing.T) {
	p := writeTestCSV(t, "id,name\n1,alice\n2,bob\n3,carol\n4,dave\n5,eve\n")

	ctx := Local(map[string]string{CSVBatchSizeKey: "2"})
	df, err := ctx.ReadCSV(p, nil, nil, true)
	require.Nil(t, err)

	batches, err := df.Collect(context.Background())
	require.Nil(t, err)
	require.Equal(t, 3, len(batches))
	require.Equal(t, 2, batches[0].NumRows())
	require.Equal(t, 2, batches[1].NumRows())
	require.Equal(t, 1, batches[2].NumRows())
}

func TestLocalCollectHeaderlessCSV(t *testing.T) {
	p := writeTestCSV(t, "1,alice\n2,bob\n3,carol\n")

	ctx := Local(nil)
	df, err := ctx.ReadCSV(p, nil, nil, false)
	require.Nil(t, err)

	batches, err := df.Collect(context.Background())
	require.Nil(t, err)

	var rows [][]table.Scalar
	for _, b := range batches {
		rows = append(rows, b.Rows...)
	}

	// the first line is data, not a header
	require.Equal(t, 3, len(rows))
	require.Equal(t, table.Int64Value(1), rows[0][0])
	require.Equal(t, table.StringValue("alice"), rows[0][1])
}

func TestLocalCollectHonorsDeclaredSchema(t *testing.T) {
	p := writeTestCSV(t, "id,name\n1,alice\n")

	declared := schema.NewSchema([]schema.Field{
		{Name: "id", Type: schema.Utf8},
		{Name: "name", Type: schema.Utf8},
	})
	ctx := Local(nil)
	df, err := ctx.ReadCSV(p, &declared, nil, true)
	require.Nil(t, err)
	require.True(t, df.Schema().Equal(declared))

	batches, err := df.Collect(context.Background())
	require.Nil(t, err)
	require.Equal(t, 1, len(batches))

	// cells parse against the declared type, not a re-inferred one
	require.Equal(t, table.StringValue("1"), batches[0].Rows[0][0])
}

func TestLocalCollectCSVAggregate(t *testing.T) {
	p := writeTestCSV(t, "dept,salary\neng,100\neng,200\nsales,50\n")

	ctx := Local(nil)
	df, err := ctx.ReadCSV(p, nil, nil, true)
	require.Nil(t, err)
	df, err = df.Aggregate([]logical.Expr{logical.Col(0)}, []logical.Expr{Sum(logical.Col(1))})
	require.Nil(t, err)

	batches, err := df.Collect(context.Background())
	require.Nil(t, err)
	require.Equal(t, 1, len(batches))
	require.Equal(t, 2, batches[0].NumRows())
	require.Equal(t, table.StringValue("eng"), batches[0].Rows[0][0])
	require.Equal(t, table.Float64Value(300), batches[0].Rows[0][1])
	require.Equal(t, table.StringValue("sales"), batches[0].Rows[1][0])
	require.Equal(t, table.Float64Value(50), batches[0].Rows[1][1])
}

func TestAggregateFunctionReturnType(t *testing.T) {
	for _, e := range []logical.Expr{
		Min(logical.Col(0)), Max(logical.Col(0)), Sum(logical.Col(0)),
		Count(logical.Col(0)), Avg(logical.Col(0)),
	} {
		agg, ok := e.(*logical.AggregateExpr)
		require.True(t, ok)
		require.Equal(t, schema.Float64, agg.ReturnType)
		require.Equal(t, 1, len(agg.Args))
	}
}

func TestReadCSVInfersSchema(t *testing.T) {
	p := writeTestCSV(t, "id,score,name\n1,9.5,alice\n")

	ctx := Local(nil)
	df, err := ctx.ReadCSV(p, nil, nil, true)
	require.Nil(t, err)
	s := df.Schema()
	require.Equal(t, 3, s.Len())
	require.Equal(t, schema.Field{Name: "id", Type: schema.Int64}, s.Field(0))
	require.Equal(t, schema.Field{Name: "score", Type: schema.Float64}, s.Field(1))
	require.Equal(t, schema.Field{Name: "name", Type: schema.Utf8}, s.Field(2))
}

func TestReadCSVWithProjection(t *testing.T) {
	p := writeTestCSV(t, "id,score,name\n1,9.5,alice\n2,7.0,bob\n")

	ctx := Local(nil)
	df, err := ctx.ReadCSV(p, nil, []int{2, 0}, true)
	require.Nil(t, err)
	require.Equal(t, 2, df.Schema().Len())
	require.Equal(t, "name", df.Schema().Field(0).Name)

	batches, err := df.Collect(context.Background())
	require.Nil(t, err)
	require.Equal(t, 1, len(batches))
	require.Equal(t, table.StringValue("alice"), batches[0].Rows[0][0])
	require.Equal(t, table.Int64Value(1), batches[0].Rows[0][1])
}
