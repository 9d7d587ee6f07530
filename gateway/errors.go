package gateway

import "github.com/0glabs/vcfparallel/common/api"

var (
	ErrTransformNotFound = api.NewBusinessError(101, "Transform not found")
	ErrTooManyRows       = api.NewBusinessError(102, "Too many rows")
	ErrRowFailed         = api.NewBusinessError(103, "Failed to transform row")
	ErrTooManyRoutines   = api.NewBusinessError(104, "Concurrency exceeds limit")
)

// RowFailure describes the failed row of a rejected map request.
type RowFailure struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}
