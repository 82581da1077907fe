// Command catalogseed loads the course catalog into the vector collection.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	ai "github.com/fairyhunter13/course-recommender/internal/adapter/ai"
	"github.com/fairyhunter13/course-recommender/internal/adapter/ai/real"
	"github.com/fairyhunter13/course-recommender/internal/adapter/observability"
	qdrantcli "github.com/fairyhunter13/course-recommender/internal/adapter/vector/qdrant"
	"github.com/fairyhunter13/course-recommender/internal/app"
	"github.com/fairyhunter13/course-recommender/internal/catalogseed"
	"github.com/fairyhunter13/course-recommender/internal/config"
)

func main() {
	csvPath := flag.String("csv", "", "course catalog CSV (defaults to COURSE_CATALOG_CSV)")
	yamlPath := flag.String("yaml", "", "extra YAML seed file (defaults to COURSE_SEED_YAML)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	if *csvPath == "" {
		*csvPath = cfg.CourseCatalogCSV
	}
	if *yamlPath == "" {
		*yamlPath = cfg.CourseSeedYAML
	}

	courses, err := catalogseed.LoadCSV(*csvPath)
	if err != nil {
		slog.Error("catalog load failed", slog.String("path", *csvPath), slog.Any("error", err))
		os.Exit(1)
	}
	if *yamlPath != "" {
		extra, err := catalogseed.LoadYAML(*yamlPath)
		if err != nil {
			slog.Error("seed yaml load failed", slog.String("path", *yamlPath), slog.Any("error", err))
			os.Exit(1)
		}
		courses = append(courses, extra...)
	}
	slog.Info("catalog loaded", slog.Int("courses", len(courses)))

	ctx := context.Background()
	qcli := qdrantcli.New(cfg.QdrantURL, cfg.QdrantAPIKey)
	if err := app.WaitForVectorStore(ctx, qcli, 60*time.Second); err != nil {
		slog.Error("vector store unavailable", slog.Any("error", err))
		os.Exit(1)
	}

	aicl := ai.NewEmbedCache(real.New(cfg), cfg.EmbedCacheSize)
	if err := catalogseed.Seed(ctx, qcli, aicl, cfg.CourseCollection, cfg.EmbeddingsDimension, courses); err != nil {
		slog.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("seeding complete", slog.String("collection", cfg.CourseCollection))
}
