package app

import (
	"context"

	"github.com/fairyhunter13/course-recommender/internal/adapter/courseinfo"
	qdrantcli "github.com/fairyhunter13/course-recommender/internal/adapter/vector/qdrant"
)

// BuildReadinessChecks returns the readiness probes for the external
// collaborators the pipeline depends on.
func BuildReadinessChecks(qcli *qdrantcli.Client, info *courseinfo.Client) (qdrantCheck, courseInfoCheck func(ctx context.Context) error) {
	qdrantCheck = func(ctx context.Context) error {
		if qcli == nil {
			return nil
		}
		_, err := qcli.ListCollections(ctx)
		return err
	}
	courseInfoCheck = func(ctx context.Context) error {
		if info == nil {
			return nil
		}
		return info.Ping(ctx)
	}
	return qdrantCheck, courseInfoCheck
}
