package recorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/lpp-tools/lpp-recorder/lpp"
	"github.com/lpp-tools/lpp-recorder/retry"
)

type fetchResult[R any] struct {
	value R
	err   error
}

// classifyFetch maps the lpp error kinds onto retry verdicts: schema
// mismatches are permanent, rate-limited responses are transient with the
// server's retry-after hint, other client errors are transient unless
// configured permanent, and everything else (server errors, transport
// failures, unsuccessful envelopes) is transient.
func classifyFetch[R any](res fetchResult[R], clientErrorsPermanent bool) retry.Outcome[R] {
	if res.err == nil {
		return retry.OK(res.value)
	}

	var schemaErr *lpp.SchemaError
	if errors.As(res.err, &schemaErr) {
		return retry.Fail[R](res.err)
	}

	var statusErr *lpp.StatusError
	if errors.As(res.err, &statusErr) {
		if statusErr.RateLimited() {
			if statusErr.RetryAfter > 0 {
				return retry.AgainAfter[R](res.err, statusErr.RetryAfter)
			}
			return retry.Again[R](res.err)
		}
		if statusErr.ClientError() && clientErrorsPermanent {
			return retry.Fail[R](res.err)
		}
	}

	return retry.Again[R](res.err)
}

// fetchWithRetry wraps one endpoint call in the retry executor and names
// the operation in the error chain.
func fetchWithRetry[R any](
	ctx context.Context,
	name string,
	clientErrorsPermanent bool,
	policy *retry.Policy,
	op func(context.Context) (R, error),
) (R, error) {
	value, err := retry.Do(ctx,
		func(ctx context.Context) fetchResult[R] {
			v, opErr := op(ctx)
			return fetchResult[R]{value: v, err: opErr}
		},
		func(res fetchResult[R]) retry.Outcome[R] {
			return classifyFetch(res, clientErrorsPermanent)
		},
		policy,
	)
	if err != nil {
		return value, fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	return value, nil
}
