package rowmap

import (
	"context"

	"github.com/0glabs/vcfparallel/table"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// Memoize caches the outputs of fn for up to size distinct (row, params) inputs. It is
// meant for expensive deterministic transforms, e.g. remote annotation lookups, over
// tables with repeated records. Failures are not cached.
func Memoize(fn Transform, size int) (Transform, error) {
	cache, err := lru.New[string, table.Row](size)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create cache")
	}

	return func(ctx context.Context, row table.Row, params Params) (table.Row, error) {
		key, err := json.MarshalToString(&request{Params: params, Row: row})
		if err != nil {
			// uncacheable input, e.g. NaN values
			return fn(ctx, row, params)
		}

		if out, ok := cache.Get(key); ok {
			return out.Clone(), nil
		}

		out, err := fn(ctx, row, params)
		if err != nil {
			return nil, err
		}

		cache.Add(key, out.Clone())

		return out, nil
	}, nil
}
