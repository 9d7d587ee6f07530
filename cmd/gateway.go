package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/0glabs/vcfparallel/common"
	"github.com/0glabs/vcfparallel/common/api"
	"github.com/0glabs/vcfparallel/gateway"
	"github.com/0glabs/vcfparallel/rowmap"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	gatewayArgs struct {
		endpoint string
		maxRows  int
		maxConc  int
		backend  string
		origins  []string
	}

	gatewayCmd = &cobra.Command{
		Use:   "gateway",
		Short: "Start gateway service to map rows over HTTP",
		Run:   startGateway,
	}
)

func init() {
	gatewayCmd.Flags().StringVar(&gatewayArgs.endpoint, "endpoint", "127.0.0.1:6789", "Gateway HTTP endpoint")
	gatewayCmd.Flags().IntVar(&gatewayArgs.maxRows, "max-rows", 100000, "Maximum rows per request, 0 for unlimited")
	gatewayCmd.Flags().IntVar(&gatewayArgs.maxConc, "max-concurrency", 0, "Maximum goroutines or worker processes per request, GOMAXPROCS if 0")
	gatewayCmd.Flags().StringVar(&gatewayArgs.backend, "backend", string(rowmap.BackendThread), "Default execution backend, thread or process")
	gatewayCmd.Flags().StringSliceVar(&gatewayArgs.origins, "origins", nil, "CORS origins allowed, all if empty")

	rootCmd.AddCommand(gatewayCmd)
}

func startGateway(*cobra.Command, []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway.MustServe(ctx, gateway.Config{
		Endpoint:       gatewayArgs.endpoint,
		MaxRows:        gatewayArgs.maxRows,
		Backend:        rowmap.Backend(gatewayArgs.backend),
		MaxConcurrency: gatewayArgs.maxConc,
		LogOption:      common.LogOption{Logger: logrus.StandardLogger()},
		Router:         api.RouterOption{OriginsAllowed: gatewayArgs.origins},
	})
}
