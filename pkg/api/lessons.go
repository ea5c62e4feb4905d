package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"

	"lessonhub/pkg/lesson"
	"lessonhub/pkg/otel"
)

// UpdateLessonResponse acknowledges a lesson update.
type UpdateLessonResponse struct {
	Message string              `json:"message"`
	Result  lesson.UpdateResult `json:"result"`
}

// listLessons returns every lesson.
// @Summary List lessons
// @Produce json
// @Success 200 {array} lesson.Lesson
// @Failure 500 {object} MessageResponse
// @Router /lessons [get]
func (s *Server) listLessons(w http.ResponseWriter, r *http.Request) error {
	ctx, span := otel.AddSpan(r.Context(), "api.listLessons")
	defer span.End()

	lessons, err := s.lessons.List(ctx)
	if err != nil {
		return fmt.Errorf("list lessons: %w", err)
	}

	writeJSON(w, http.StatusOK, lessons)
	return nil
}

// searchLessons returns lessons whose subject or location contain the query,
// or whose price or spaces equal it when it is a number.
// @Summary Search lessons
// @Produce json
// @Param query query string false "Search text"
// @Success 200 {array} lesson.Lesson
// @Failure 400 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /search [get]
func (s *Server) searchLessons(w http.ResponseWriter, r *http.Request) error {
	q := lesson.ParseQuery(r.URL.Query().Get("query"))

	ctx, span := otel.AddSpan(r.Context(), "api.searchLessons",
		attribute.String("query", q.Text),
		attribute.Bool("numeric", q.Number != nil),
	)
	defer span.End()

	lessons, err := s.lessons.Search(ctx, q)
	if err != nil {
		return fmt.Errorf("search lessons: %w", err)
	}

	writeJSON(w, http.StatusOK, lessons)
	return nil
}

// updateLesson overwrites the supplied fields of a lesson. An unknown id is
// reported with matchedCount 0, not as an error.
// @Summary Update lesson
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param lesson body object true "Fields to overwrite"
// @Success 200 {object} UpdateLessonResponse
// @Failure 400 {object} MessageResponse
// @Failure 500 {object} MessageResponse
// @Router /lessons/{id} [put]
func (s *Server) updateLesson(w http.ResponseWriter, r *http.Request) error {
	id := mux.Vars(r)["id"]

	ctx, span := otel.AddSpan(r.Context(), "api.updateLesson", attribute.String("lesson.id", id))
	defer span.End()

	var patch lesson.Patch
	if err := decodeObject(w, r, &patch); err != nil {
		return err
	}

	res, err := s.lessons.Update(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("update lesson %s: %w", id, err)
	}

	writeJSON(w, http.StatusOK, UpdateLessonResponse{
		Message: "Lesson updated successfully",
		Result:  res,
	})
	return nil
}
