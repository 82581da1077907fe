package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/course-recommender/internal/adapter/observability"
	"github.com/fairyhunter13/course-recommender/internal/config"
	"github.com/fairyhunter13/course-recommender/internal/domain"
	"github.com/fairyhunter13/course-recommender/internal/usecase"
)

// Server aggregates handler dependencies.
type Server struct {
	Cfg             config.Config
	Recommender     *usecase.RecommendService
	QdrantCheck     func(ctx context.Context) error
	CourseInfoCheck func(ctx context.Context) error
}

var validate = validator.New()

type recommendRequest struct {
	Weaknesses []domain.WeaknessInput `json:"weaknesses" validate:"required,min=1"`
	// MaxCourses caps each weakness's list.
	MaxCourses int `json:"max_courses" validate:"required,min=1"`
	// MaxCoursesOverall caps the whole response; defaults to
	// max_courses * len(weaknesses) when omitted.
	MaxCoursesOverall int `json:"max_courses_overall" validate:"omitempty,min=1"`
}

type weaknessResponse struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Description string  `json:"description,omitempty"`
	Importance  float64 `json:"importance"`
}

type courseScoreResponse struct {
	CourseID    string         `json:"courseId"`
	LessonTitle string         `json:"lessonTitle"`
	Description string         `json:"description"`
	Link        string         `json:"link"`
	Metadata    map[string]any `json:"metadata"`
	WeaknessID  string         `json:"weaknessId"`
	Score       float64        `json:"score"`
	Reason      string         `json:"reason"`
}

type weaknessRecommendationsResponse struct {
	Weakness           weaknessResponse      `json:"weakness"`
	RecommendedCourses []courseScoreResponse `json:"recommendedCourses"`
}

type recommendResponse struct {
	Recommendations []weaknessRecommendationsResponse `json:"recommendations"`
}

// RecommendHandler serves POST /v1/course-recommendations.
func (s *Server) RecommendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recommendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: malformed JSON body", domain.ErrInvalidArgument), nil)
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, err.Error()), nil)
			return
		}
		maxOverall := req.MaxCoursesOverall
		if maxOverall == 0 {
			maxOverall = req.MaxCourses * len(req.Weaknesses)
		}

		results, err := s.Recommender.RecommendByWeakness(r.Context(), req.Weaknesses, maxOverall, req.MaxCourses)
		if err != nil {
			LoggerFrom(r).Error("recommendation failed", slog.Any("error", err))
			writeError(w, r, err, nil)
			return
		}

		resp := serializeResults(results)
		observeScores(results)
		writeJSON(w, http.StatusOK, resp)
	}
}

func serializeResults(results []domain.WeaknessRecommendations) recommendResponse {
	out := recommendResponse{Recommendations: make([]weaknessRecommendationsResponse, 0, len(results))}
	for _, entry := range results {
		courses := make([]courseScoreResponse, 0, len(entry.Recommendations))
		for _, cs := range entry.Recommendations {
			metadata := cs.Course.Metadata
			if metadata == nil {
				metadata = map[string]any{}
			}
			courses = append(courses, courseScoreResponse{
				CourseID:    cs.Course.ID,
				LessonTitle: cs.Course.LessonTitle,
				Description: cs.Course.Description,
				Link:        cs.Course.Link,
				Metadata:    metadata,
				WeaknessID:  cs.WeaknessID,
				Score:       cs.Score,
				Reason:      cs.Reason,
			})
		}
		out.Recommendations = append(out.Recommendations, weaknessRecommendationsResponse{
			Weakness: weaknessResponse{
				ID:          entry.Weakness.ID,
				Text:        entry.Weakness.Text,
				Description: entry.Weakness.Description,
				Importance:  entry.Weakness.Importance,
			},
			RecommendedCourses: courses,
		})
	}
	return out
}

func observeScores(results []domain.WeaknessRecommendations) {
	scores := make([]float64, 0)
	for _, entry := range results {
		for _, cs := range entry.Recommendations {
			scores = append(scores, cs.Score)
		}
	}
	observability.ObserveRecommendationScores(scores)
}

// ReadyzHandler reports readiness of the vector index and course-info API.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		checks := make([]check, 0, 2)
		allOK := true
		run := func(name string, fn func(ctx context.Context) error) {
			if fn == nil {
				return
			}
			c := check{Name: name, OK: true}
			if err := fn(r.Context()); err != nil {
				c.OK = false
				c.Details = err.Error()
				allOK = false
			}
			checks = append(checks, c)
		}
		run("qdrant", s.QdrantCheck)
		run("course_info", s.CourseInfoCheck)
		status := http.StatusOK
		if !allOK {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]any{"checks": checks})
	}
}
