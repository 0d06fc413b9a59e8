package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"trading-dashboard/src/dashboard"
	pb "trading-dashboard/src/grpc_control"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// runControlServer serves the chart control API until a signal arrives or
// ctx ends. A zero grpc_port disables it and only waits.
func runControlServer(ctx context.Context, controller *dashboard.Controller, config *models.MConfig, appLogger *logger.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.GrpcPort == 0 {
		appLogger.Info("gRPC control disabled")
		<-ctx.Done()
		return nil
	}

	addr := fmt.Sprintf("%s:%d", config.GrpcHost, config.GrpcPort)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		appLogger.Critical("failed to listen for gRPC: %v", err)
		return err
	}

	grpcServer := grpc.NewServer()
	pb.RegisterChartControlServer(grpcServer, pb.NewControlService(controller, appLogger.Named("ControlService")))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Starting gRPC Control Server on %s", addr)
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down...")
		grpcServer.GracefulStop()
		return nil
	})
	return g.Wait()
}
