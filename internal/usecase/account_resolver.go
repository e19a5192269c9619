package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/rift-scout/internal/domain/account"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/riskibarqy/rift-scout/internal/platform/resilience"
)

// AccountResolver maps a display name to a stable player handle.
type AccountResolver struct {
	directory account.Directory
	retry     resilience.RetryPolicy
	logger    *logging.Logger
}

func NewAccountResolver(directory account.Directory, retry resilience.RetryPolicy, logger *logging.Logger) *AccountResolver {
	if logger == nil {
		logger = logging.Default()
	}
	return &AccountResolver{
		directory: directory,
		retry:     resilience.NormalizeRetryPolicy(retry),
		logger:    logger,
	}
}

type accountLookup struct {
	handle account.Handle
	found  bool
}

func (r *AccountResolver) Resolve(ctx context.Context, displayName string) (account.Handle, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AccountResolver.Resolve")
	defer span.End()

	name := account.NormalizeName(displayName)
	if name == "" {
		return account.Handle{}, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}

	res, err := resilience.Retry(ctx, r.retry, isRetryable, func(ctx context.Context, attempt int) (accountLookup, error) {
		handle, found, err := r.directory.FindByName(ctx, name)
		if err != nil && attempt > 1 {
			r.logger.DebugContext(ctx, "account lookup retry failed", "attempt", attempt, "error", err)
		}
		return accountLookup{handle: handle, found: found}, err
	})
	if err != nil {
		r.logger.WarnContext(ctx, "resolve account failed", "display_name", name, "error", err)
		return account.Handle{}, fatalUpstreamError(ctx, "resolve account", err)
	}
	if !res.found {
		return account.Handle{}, fmt.Errorf("%w: account %q", ErrNotFound, name)
	}

	handle := res.handle
	if handle.DisplayName == "" {
		handle.DisplayName = name
	}
	if err := handle.Validate(); err != nil {
		return account.Handle{}, fmt.Errorf("%w: resolve account %q: %w", ErrUpstreamUnavailable, name, err)
	}

	return handle, nil
}
