package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	qdrantcli "github.com/fairyhunter13/course-recommender/internal/adapter/vector/qdrant"
)

// WaitForVectorStore blocks until the vector store answers, retrying with
// exponential backoff. This is startup-only behavior: once the pipeline is
// serving, every remote call stays single-attempt.
func WaitForVectorStore(ctx context.Context, qcli *qdrantcli.Client, maxElapsed time.Duration) error {
	if qcli == nil {
		return nil
	}
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 500 * time.Millisecond
	expo.MaxInterval = 10 * time.Second
	expo.MaxElapsedTime = maxElapsed

	op := func() error {
		_, err := qcli.ListCollections(ctx)
		if err != nil {
			slog.Warn("vector store not ready", slog.Any("error", err))
		}
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(expo, ctx)); err != nil {
		return fmt.Errorf("op=app.WaitForVectorStore: %w", err)
	}
	slog.Info("vector store ready")
	return nil
}
