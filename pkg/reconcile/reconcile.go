// Package reconcile merges a requested list of routers into a store.
//
// Reconciliation is append-only and keyed by router address: records whose
// address is already stored are skipped, and everything else is appended in
// request order. Running the same request twice changes nothing the second
// time.
package reconcile

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/routeconf/pkg/errors"
	"github.com/agentstation/routeconf/pkg/logging"
	"github.com/agentstation/routeconf/pkg/routers"
	"github.com/agentstation/routeconf/pkg/store"
)

// Reconciler merges requested routers into a store file.
type Reconciler interface {
	// Reconcile appends every requested router whose address is not in the
	// store at storePath. A nil request is a no-op that touches no files.
	Reconcile(ctx context.Context, storePath string, requested []routers.Record) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	format      store.Format
	dryRun      bool
	deduplicate bool
	lenient     bool
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &reconciler{
		format:      options.format,
		dryRun:      options.dryRun,
		deduplicate: options.deduplicate,
		lenient:     options.lenient,
	}, nil
}

// Reconcile performs reconciliation with a step-by-step flow.
func (r *reconciler) Reconcile(ctx context.Context, storePath string, requested []routers.Record) (*Result, error) {
	if requested == nil {
		logging.FromContext(ctx).Debug().Msg("No routers requested, skipping reconciliation")
		return absentResult(), nil
	}

	// Step 1: validate the request before touching the store
	if storePath == "" {
		return nil, errors.NewValidationError("store_path", storePath, "store path is required")
	}
	requested, err := routers.Normalize(requested)
	if err != nil {
		return nil, err
	}

	ctx = logging.WithStore(logging.WithOperation(ctx, "reconcile"), storePath)
	logger := logging.FromContext(ctx)
	start := time.Now()

	result := &Result{
		RequestedCount: len(requested),
		StorePath:      storePath,
		Format:         r.format,
		DryRun:         r.dryRun,
	}
	result.StartedAt.Time = start.UTC()

	// Step 2: read existing records, then append what is missing
	if r.dryRun {
		err = r.plan(ctx, storePath, requested, result)
	} else {
		err = r.apply(ctx, storePath, requested, result)
	}
	if err != nil {
		return nil, err
	}

	// Step 3: summarize
	result.AddedCount = len(result.Added)
	result.Changed = result.AddedCount > 0
	result.Message = summaryMessage(result.ExistingCount, result.RequestedCount, result.AddedCount)
	result.Duration = time.Since(start)

	logger.Info().
		Int("existing", result.ExistingCount).
		Int("requested", result.RequestedCount).
		Int("added", result.AddedCount).
		Bool("dry_run", result.DryRun).
		Dur("duration", result.Duration).
		Msg("Reconciliation completed")

	return result, nil
}

// apply reconciles against the store under its lock and closes it before returning.
func (r *reconciler) apply(ctx context.Context, storePath string, requested []routers.Record, result *Result) (err error) {
	logger := logging.FromContext(ctx)
	s, err := store.Open(storePath, store.WithFormat(r.format), store.WithLenient(r.lenient))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if perr := s.ParseFailure(); perr != nil {
		r.warnLenient(logger, perr, result)
	}
	if s.Created() {
		logger.Debug().Msg("Initialized empty store")
	}

	existing := s.Records()
	result.ExistingCount = len(existing)
	result.StoreCreated = s.Created()

	missing := r.diff(ctx, existing, requested, result)
	if len(missing) == 0 {
		return nil
	}
	return s.Append(missing...)
}

// plan computes the result of reconciling without creating or writing the store.
func (r *reconciler) plan(ctx context.Context, storePath string, requested []routers.Record, result *Result) error {
	logger := logging.FromContext(ctx)
	existing, exists, err := store.Load(storePath, store.WithFormat(r.format))
	if err != nil {
		if !r.lenient || !errors.IsParse(err) {
			return err
		}
		r.warnLenient(logger, err, result)
		existing = nil
	}

	result.ExistingCount = len(existing)
	result.StoreCreated = !exists
	r.diff(ctx, existing, requested, result)
	return nil
}

// diff returns the requested records to append and fills Added and Skipped.
func (r *reconciler) diff(ctx context.Context, existing, requested []routers.Record, result *Result) []routers.Record {
	known := routers.NewSet(existing)
	seen := routers.NewSet(nil)

	var missing []routers.Record
	for _, rec := range requested {
		logger := logging.FromContext(logging.WithRouter(ctx, rec.Address))
		if known.Has(rec.Address) || (r.deduplicate && seen.Has(rec.Address)) {
			logger.Debug().Msg("Router already present")
			result.Skipped = append(result.Skipped, rec.Address)
			continue
		}
		seen.Add(rec.Address)
		logger.Debug().Msg("Appending router")
		missing = append(missing, rec)
		result.Added = append(result.Added, rec.Address)
	}
	return missing
}

func (r *reconciler) warnLenient(logger *zerolog.Logger, err error, result *Result) {
	logger.Warn().Err(err).Msg("Store could not be parsed, treating it as empty")
	result.Warnings = append(result.Warnings, "store could not be parsed and was treated as empty: "+err.Error())
}
