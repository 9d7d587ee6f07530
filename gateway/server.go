package gateway

import (
	"context"
	"runtime"

	"github.com/0glabs/vcfparallel/common"
	"github.com/0glabs/vcfparallel/common/api"
	"github.com/0glabs/vcfparallel/rowmap"
	"github.com/gin-gonic/gin"
)

type Config struct {
	Endpoint string         // http endpoint
	MaxRows  int            // max rows per request, 0 for unlimited
	Backend  rowmap.Backend // default backend of requests

	// MaxConcurrency bounds the goroutines or worker processes of a request, and is
	// GOMAXPROCS when 0.
	MaxConcurrency int

	Worker    rowmap.WorkerOption
	LogOption common.LogOption
	Router    api.RouterOption
}

func (config *Config) maxConcurrency() int {
	if config.MaxConcurrency > 0 {
		return config.MaxConcurrency
	}
	return runtime.GOMAXPROCS(0)
}

// MustServe serves the gateway until ctx is done.
func MustServe(ctx context.Context, config Config) {
	api.MustServe(ctx, config.Endpoint, Routes(config), config.Router)
}

func Routes(config Config) api.RouteFactory {
	controller := NewRestController(config)

	return func(router *gin.Engine) {
		router.GET("/transforms", api.Wrap(controller.listTransforms))
		router.POST("/map", api.Wrap(controller.mapRows))
	}
}
