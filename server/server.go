// Package server hosts the executor service: it accepts Collect
// actions over gRPC and evaluates them with the local engine.
package server

import (
	"context"
	"net"
	"strconv"

	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"

	brig "github.com/go-brig/brig"
	"github.com/go-brig/brig/engine"
	"github.com/go-brig/brig/errors"
	"github.com/go-brig/brig/logging"
	"github.com/go-brig/brig/rpc"
)

// Options configures an executor Server
type Options struct {
	Settings          map[string]string // Resolved through the standard configuration catalog. Controls the scan batch size.
	MaxConcurrentJobs int64             // Maximum number of Collect actions evaluated at once. Defaults to 8.
	LogLevel          int               // Minimum log level. Defaults to InfoLevel.
}

func ensureDefaultOptionsValues(opts *Options) {
	if opts.MaxConcurrentJobs <= 0 {
		opts.MaxConcurrentJobs = 8
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = logging.InfoLevel
	}
}

// Server is an executor node evaluating Collect actions
type Server struct {
	opts   *Options
	server *grpc.Server
	jobs   *semaphore.Weighted
	logger *logging.Logger
}

// New creates a Server
func New(opts *Options) *Server {
	if opts == nil {
		opts = &Options{}
	}
	ensureDefaultOptionsValues(opts)
	return &Server{
		opts:   opts,
		jobs:   semaphore.NewWeighted(opts.MaxConcurrentJobs),
		logger: logging.CreateLogger(opts.LogLevel),
	}
}

// Serve accepts executor traffic on the given listener, blocking until
// the server is stopped
func (s *Server) Serve(lis net.Listener) error {
	s.server = grpc.NewServer()
	s.server.RegisterService(&rpc.ExecutorServiceDesc, s)
	s.logger.Infof("Starting executor at %s", lis.Addr())
	return s.server.Serve(lis)
}

// GracefulStop stops the server, waiting for running jobs to finish
func (s *Server) GracefulStop() {
	if s.server != nil {
		s.server.GracefulStop()
	}
}

// Stop stops the server immediately
func (s *Server) Stop() {
	if s.server != nil {
		s.server.Stop()
	}
}

// Collect evaluates one action's plan and returns its result batches
func (s *Server) Collect(ctx context.Context, action *rpc.Action) (*rpc.CollectResult, error) {
	if err := s.jobs.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.jobs.Release(1)
	s.logger.Infof("Running collect job %s", action.JobID)

	batchSize, err := s.batchSize()
	if err != nil {
		return nil, err
	}
	eng := engine.New()
	optimized, err := eng.Optimize(action.Plan)
	if err != nil {
		s.logger.Errorf("Job %s failed to optimize: %v", action.JobID, err)
		return nil, err
	}
	exec, err := eng.CreatePhysicalPlan(optimized, batchSize)
	if err != nil {
		s.logger.Errorf("Job %s failed to compile: %v", action.JobID, err)
		return nil, err
	}
	batches, err := eng.Collect(ctx, exec)
	if err != nil {
		s.logger.Errorf("Job %s failed: %v", action.JobID, err)
		return nil, err
	}
	s.logger.Infof("Finished collect job %s: %d batches", action.JobID, len(batches))
	return &rpc.CollectResult{Batches: batches}, nil
}

func (s *Server) batchSize() (int, error) {
	configs := brig.NewConfigs(s.opts.Settings)
	batchSizeStr, _ := configs.CSVBatchSize()
	batchSize, err := strconv.Atoi(batchSizeStr)
	if err != nil {
		return 0, &errors.ConfigurationError{Key: brig.CSVBatchSizeKey, Reason: "not a valid integer: " + batchSizeStr}
	}
	return batchSize, nil
}
