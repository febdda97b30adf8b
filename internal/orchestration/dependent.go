package orchestration

import (
	"context"

	"github.com/civiceye/backend/internal/apperr"
)

// Reference is a foreign key into another service.
type Reference struct {
	Kind EntityKind
	ID   int64
}

// CreateDependent validates ref, then persists, then runs effect. label names
// the record being written.
//
// persist commits the local write and receives the successful validation
// result so it can use the owner snapshot. effect is a best-effort action
// without an error return: it cannot change the outcome of the operation.
//
// A negative validation returns ValidationFailed without calling persist. A
// persist error is returned as PersistenceFailed (unless already classified)
// and effect is not run. effect runs only after persist has returned
// successfully.
func CreateDependent[T any](ctx context.Context, label string, v Validator, ref Reference, persist func(ctx context.Context, validated Result) (T, error), effect func(ctx context.Context, committed T)) (T, error) {
	var zero T

	res := v.Validate(ctx, ref.Kind, ref.ID)
	if !res.Exists() {
		return zero, Failure(ref.Kind, ref.ID, res)
	}

	return commitThen(ctx, func(ctx context.Context) (T, error) {
		return persist(ctx, res)
	}, effect, label)
}

// MutateLocal is the narrow variant for writes whose target lives in local
// storage: mutate (which reports NotFound itself), then run effect.
func MutateLocal[T any](ctx context.Context, label string, mutate func(ctx context.Context) (T, error), effect func(ctx context.Context, committed T)) (T, error) {
	return commitThen(ctx, mutate, effect, label)
}

func commitThen[T any](ctx context.Context, commit func(ctx context.Context) (T, error), effect func(ctx context.Context, committed T), label string) (T, error) {
	var zero T

	committed, err := commit(ctx)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			return zero, apperr.PersistenceFailed(err, "failed to save %s", label)
		}
		return zero, err
	}

	if effect != nil {
		effect(ctx, committed)
	}
	return committed, nil
}
