// Package catalogseed loads the course catalog and populates the vector
// collection used for retrieval.
//
// It supports the legacy CSV catalog export plus optional YAML files for
// hand-curated entries. Lesson titles and descriptions are embedded in
// provider-sized batches and upserted with their catalog fields as payload.
package catalogseed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	qdrantcli "github.com/fairyhunter13/course-recommender/internal/adapter/vector/qdrant"
	"github.com/fairyhunter13/course-recommender/internal/domain"
	"github.com/fairyhunter13/course-recommender/pkg/textx"
)

// upsertBatchSize bounds one embed+upsert round trip.
const upsertBatchSize = 64

// CatalogCourse is one seedable catalog entry.
type CatalogCourse struct {
	ID          string `yaml:"id"`
	LessonTitle string `yaml:"lesson_title"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
}

// embedText is the text indexed for a course.
func (c CatalogCourse) embedText() string {
	if c.Description == "" {
		return c.LessonTitle
	}
	return c.LessonTitle + "\n" + c.Description
}

// LoadCSV reads catalog entries from a CSV export. The header row names the
// columns; id and lesson_title are required per row, rows missing them are
// skipped with a warning.
func LoadCSV(path string) ([]CatalogCourse, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("catalog file not found: %s", path)
		}
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]CatalogCourse, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("op=catalogseed.parseCSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["id"]; !ok {
		return nil, errors.New("op=catalogseed.parseCSV: missing 'id' column")
	}
	field := func(row []string, names ...string) string {
		for _, n := range names {
			if i, ok := col[n]; ok && i < len(row) {
				if v := strings.TrimSpace(row[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}
	var out []CatalogCourse
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("op=catalogseed.parseCSV line=%d: %w", line, err)
		}
		c := CatalogCourse{
			ID:          field(row, "id"),
			LessonTitle: field(row, "lesson_title", "lessontitle", "title"),
			Description: textx.SanitizeText(field(row, "description", "short_description")),
			Link:        field(row, "link", "course_url"),
		}
		if c.ID == "" || c.LessonTitle == "" {
			slog.Warn("skipping catalog row without id or title", slog.Int("line", line))
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// LoadYAML reads hand-curated catalog entries from a YAML file.
func LoadYAML(path string) ([]CatalogCourse, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("seed file not found: %s", path)
		}
		return nil, err
	}
	var doc struct {
		Courses []CatalogCourse `yaml:"courses"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("op=catalogseed.LoadYAML: %w", err)
	}
	out := make([]CatalogCourse, 0, len(doc.Courses))
	for _, c := range doc.Courses {
		if c.ID == "" || c.LessonTitle == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Seed ensures the collection exists and upserts all courses. Entries with
// duplicate ids keep the last occurrence.
func Seed(ctx context.Context, qcli *qdrantcli.Client, aicl domain.AIClient, collection string, dimension int, courses []CatalogCourse) error {
	if len(courses) == 0 {
		return errors.New("op=catalogseed.Seed: no courses to seed")
	}
	if err := qcli.EnsureCollection(ctx, collection, dimension, "Cosine"); err != nil {
		return fmt.Errorf("op=catalogseed.EnsureCollection: %w", err)
	}

	// Dedupe by id, last wins
	byID := make(map[string]CatalogCourse, len(courses))
	order := make([]string, 0, len(courses))
	for _, c := range courses {
		if _, seen := byID[c.ID]; !seen {
			order = append(order, c.ID)
		}
		byID[c.ID] = c
	}

	for start := 0; start < len(order); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(order) {
			end = len(order)
		}
		batch := order[start:end]
		texts := make([]string, 0, len(batch))
		payloads := make([]map[string]any, 0, len(batch))
		ids := make([]any, 0, len(batch))
		for _, id := range batch {
			c := byID[id]
			texts = append(texts, c.embedText())
			payloads = append(payloads, map[string]any{
				"course_id":    c.ID,
				"lesson_title": c.LessonTitle,
				"description":  c.Description,
				"link":         c.Link,
			})
			ids = append(ids, c.ID)
		}
		vecs, err := aicl.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("op=catalogseed.Embed: %w", err)
		}
		if err := qcli.UpsertPoints(ctx, collection, vecs, payloads, ids); err != nil {
			return fmt.Errorf("op=catalogseed.Upsert: %w", err)
		}
		slog.Info("seeded catalog batch",
			slog.String("collection", collection),
			slog.Int("from", start),
			slog.Int("count", len(batch)))
	}
	return nil
}
