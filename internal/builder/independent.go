package builder

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/chainspend/internal/keys"
	"github.com/goodnatureofminers/chainspend/pkg/workerpool"
)

// BuildIndependent builds one spend per funding output, all paying destination,
// using up to workers goroutines. Results keep the order of fundings.
func BuildIndependent(
	ctx context.Context,
	workers int,
	key *keys.KeyPair,
	fee uint64,
	fundings []FundingOutput,
	destination []byte,
) ([]*Result, error) {
	if len(fundings) == 0 {
		return nil, stageErr(StageFunding, fmt.Errorf("no funding outputs: %w", ErrMalformedInput))
	}
	return workerpool.Map(ctx, workers, fundings, func(_ context.Context, funding FundingOutput) (*Result, error) {
		res, err := Build(key, fee, funding, destination)
		if err != nil {
			return nil, fmt.Errorf("spend %s: %w", funding.OutPoint, err)
		}
		return res, nil
	})
}
