package gateway

import (
	"github.com/0glabs/vcfparallel/rowmap"
	"github.com/0glabs/vcfparallel/table"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type MapRequest struct {
	Transform       string         `json:"transform" binding:"required"`
	Params          rowmap.Params  `json:"params"`
	Backend         rowmap.Backend `json:"backend" binding:"omitempty,oneof=thread process"`
	Concurrency     int            `json:"concurrency" binding:"gte=0"`
	CompletionOrder bool           `json:"completionOrder"`
	Columns         []string       `json:"columns"` // input schema, inferred from rows if empty
	Rows            []table.Row    `json:"rows"`
}

type MapResponse struct {
	Columns []string    `json:"columns"`
	Rows    []table.Row `json:"rows"`
}

type RestController struct {
	config Config
}

func NewRestController(config Config) *RestController {
	return &RestController{config: config}
}

func (ctrl *RestController) listTransforms(c *gin.Context) (interface{}, error) {
	return rowmap.Registered(), nil
}

func (ctrl *RestController) mapRows(c *gin.Context) (interface{}, error) {
	var input MapRequest

	// bind the `application/json` request
	if err := c.ShouldBindJSON(&input); err != nil {
		return nil, err
	}

	if ctrl.config.MaxRows > 0 && len(input.Rows) > ctrl.config.MaxRows {
		return nil, ErrTooManyRows.WithData(ctrl.config.MaxRows)
	}

	limit := ctrl.config.maxConcurrency()
	if input.Concurrency > limit {
		return nil, ErrTooManyRoutines.WithData(limit)
	}

	concurrency := input.Concurrency
	if concurrency == 0 {
		concurrency = limit
	}

	fn, ok := rowmap.Lookup(input.Transform)
	if !ok {
		return nil, ErrTransformNotFound.WithData(input.Transform)
	}

	var source *table.Table
	if len(input.Columns) > 0 {
		source = table.New(input.Columns, input.Rows...)
	} else {
		source = table.FromRows(input.Rows, nil)
	}

	backend := input.Backend
	if backend == "" {
		backend = ctrl.config.Backend
	}

	result, err := rowmap.Map(c.Request.Context(), source, fn, input.Params, rowmap.Option{
		Backend:         backend,
		Concurrency:     concurrency,
		CompletionOrder: input.CompletionOrder,
		Worker:          ctrl.config.Worker,
		LogOption:       ctrl.config.LogOption,
	})
	if err != nil {
		var rowErr *rowmap.RowError
		if errors.As(err, &rowErr) {
			return nil, ErrRowFailed.WithData(RowFailure{
				Index:   rowErr.Index,
				Message: rowErr.Err.Error(),
			})
		}
		return nil, err
	}

	return MapResponse{
		Columns: result.Columns(),
		Rows:    result.Rows(),
	}, nil
}
