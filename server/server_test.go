package server

import (
	"context"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	brig "github.com/go-brig/brig"
	"github.com/go-brig/brig/client"
	"github.com/go-brig/brig/errors"
	"github.com/go-brig/brig/logging"
	"github.com/go-brig/brig/logical"
	"github.com/go-brig/brig/rpc"
	"github.com/go-brig/brig/schema"
	"github.com/go-brig/brig/table"
)

func startServer(t *testing.T, opts *Options) (*Server, int) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	s := New(opts)
	go func() {
		_ = s.Serve(lis)
	}()
	t.Cleanup(s.GracefulStop)
	return s, lis.Addr().(*net.TCPAddr).Port
}

func peopleBatch(t *testing.T) table.Batch {
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

func TestRemoteCollectRoundTrip(t *testing.T) {
	_, port := startServer(t, &Options{LogLevel: logging.ErrorLevel})

	ctx := brig.Remote("127.0.0.1", port, nil)
	df, err := ctx.CreateDataFrame([]table.Batch{peopleBatch(t)})
	require.Nil(t, err)
	df, err = df.Project([]logical.Expr{logical.Col(1)})
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
	require.Equal(t, table.StringValue("bob"), rows[1][0])
}

func TestSparkCollectRoundTrip(t *testing.T) {
	_, port := startServer(t, &Options{LogLevel: logging.ErrorLevel})

	ctx := brig.Spark("local[4]", map[string]string{
		brig.SparkHostKey: "127.0.0.1",
		brig.SparkPortKey: strconv.Itoa(port),
	})
	df, err := ctx.CreateDataFrame([]table.Batch{peopleBatch(t)})
	require.Nil(t, err)
	df, err = df.Aggregate(nil, []logical.Expr{brig.Count(logical.Col(0))})
	require.Nil(t, err)

	batches, err := df.Collect(context.Background())
	require.Nil(t, err)
	require.Equal(t, 1, len(batches))
	require.Equal(t, table.Float64Value(3), batches[0].Rows[0][0])
}

func TestRemoteCollectPropagatesFailures(t *testing.T) {
	_, port := startServer(t, &Options{LogLevel: logging.ErrorLevel})

	bad := &logical.AggregateExpr{Name: "MEDIAN", Args: []logical.Expr{logical.Col(0)}, ReturnType: schema.Float64}
	ctx := brig.Remote("127.0.0.1", port, nil)
	df, err := ctx.CreateDataFrame([]table.Batch{peopleBatch(t)})
	require.Nil(t, err)
	df, err = df.Aggregate(nil, []logical.Expr{bad})
	require.Nil(t, err)

	_, err = df.Collect(context.Background())
	var transportErr *errors.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, "127.0.0.1", transportErr.Host)
}

func TestExecuteActionLeavesActionUntouched(t *testing.T) {
	_, port := startServer(t, &Options{LogLevel: logging.ErrorLevel})

	action := &rpc.Action{Plan: &logical.MemoryScan{Batches: []table.Batch{peopleBatch(t)}}}
	batches, err := client.ExecuteAction(context.Background(), "127.0.0.1", port, action)
	require.Nil(t, err)
	require.Equal(t, 1, len(batches))

	// the stamped job ID lives on the outgoing request only
	require.Equal(t, "", action.JobID)
}

func TestServerRejectsBadBatchSize(t *testing.T) {
	s := New(&Options{
		Settings: map[string]string{brig.CSVBatchSizeKey: "huge"},
		LogLevel: logging.ErrorLevel,
	})
	_, err := s.Collect(context.Background(), &rpc.Action{
		JobID: "job-1",
		Plan:  &logical.EmptyRelation{OutputSchema: schema.Empty()},
	})
	var confErr *errors.ConfigurationError
	require.ErrorAs(t, err, &confErr)
	require.Equal(t, brig.CSVBatchSizeKey, confErr.Key)
}

func TestServerDefaultOptions(t *testing.T) {
	s := New(nil)
	require.Equal(t, int64(8), s.opts.MaxConcurrentJobs)
	require.Equal(t, logging.InfoLevel, s.opts.LogLevel)
}
