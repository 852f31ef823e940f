// Package student contains all HTTP handlers related to the Student resource.
//
// Each handler is a factory: it receives its dependencies once at startup
// and returns the http.HandlerFunc that runs on every request.
//
//	router.HandleFunc("POST /students", student.New(store))
//
// Every successful JSON response uses 201, including reads and deletes.
package student

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records-api/internal/storage"
	"github.com/aanand-mishra/student-records-api/internal/types"
	"github.com/aanand-mishra/student-records-api/internal/utils/request"
	"github.com/aanand-mishra/student-records-api/internal/utils/response"
)

const (
	msgNotFound = "Student not found."
	msgDeleted  = "Student deleted."
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students
//
// Request body (JSON):
//
//	{ "name": "Ann", "email": "a@x.com", "score1": 1, "score2": 2, "score3": 3,
//	  "class": "A", "lectures": [{ "name": "Algebra" }] }
//
// Success response (201 Created):
//
//	{ "id": 1 }
//
// Error responses:
//
//	400 Bad Request  — empty body, malformed JSON, or missing field
//	409 Conflict     — email already used
//	500 Internal     — database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var req CreateRequest
		if err := request.DecodeJSON(r, &req); err != nil {
			response.RequestError(w, err)
			return
		}
		if err := request.Validate(req); err != nil {
			response.RequestError(w, err)
			return
		}

		id, err := store.CreateStudent(r.Context(), req.student(), req.lectures())
		if err != nil {
			slog.Error("error creating student", slog.String("error", err.Error()))
			response.StoreError(w, err, msgNotFound)
			return
		}

		slog.Info("student created", slog.Int64("id", id), slog.Int("lectures", len(req.Lectures)))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
	}
}

// GetByID handles GET /students/{id} and returns the student with its
// lectures, or 404 { "message": "Student not found." }.
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r)
		if err != nil {
			response.RequestError(w, err)
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, err := store.GetStudentByID(r.Context(), id)
		if err != nil {
			response.StoreError(w, err, msgNotFound)
			return
		}

		response.WriteJSON(w, http.StatusCreated, Map(student))
	}
}

// GetList handles GET /students. An empty table yields [].
func GetList(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := store.GetStudents(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.StoreError(w, err, msgNotFound)
			return
		}

		response.WriteJSON(w, http.StatusCreated, MapAll(students))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /students/{id}
// Only the fields present in the body are changed.
//
// Each entry of the optional "lectures" array is handled on its own:
//
//	{ "id": 3, "name": "Algebra II" }  updates lecture 3 and binds it here
//	{ "name": "Geometry" }             creates a new lecture for this student
//
// An "id" that matches no lecture also creates a new one. An entry that
// cannot be applied is logged and reported in "lecture_errors"; the other
// entries are still processed.
//
// Success response (201):
//
//	{ "id": 1 }
//	{ "id": 1, "lecture_errors": [{ "index": 0, "error": "field name is required" }] }
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r)
		if err != nil {
			response.RequestError(w, err)
			return
		}
		slog.Info("updating a student", slog.Int64("id", id))

		var req UpdateRequest
		if err := request.DecodeJSON(r, &req); err != nil {
			response.RequestError(w, err)
			return
		}

		if err := store.UpdateStudentByID(r.Context(), id, req.patch()); err != nil {
			slog.Error("error updating student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.StoreError(w, err, msgNotFound)
			return
		}

		failures := applyLectures(r.Context(), store, id, req.Lectures)

		slog.Info("student updated", slog.Int64("id", id), slog.Int("lecture_errors", len(failures)))
		response.WriteJSON(w, http.StatusCreated, UpdateResponse{ID: id, LectureErrors: failures})
	}
}

// applyLectures upserts each nested entry for the student and collects
// the entries that failed instead of stopping at the first one.
func applyLectures(ctx context.Context, store storage.Storage, studentID int64, entries []json.RawMessage) []LectureError {
	var failures []LectureError

	for i, raw := range entries {
		if err := applyLecture(ctx, store, studentID, raw); err != nil {
			slog.Warn("skipping lecture entry",
				slog.Int64("student_id", studentID),
				slog.Int("index", i),
				slog.String("entry", string(raw)),
				slog.String("error", err.Error()))
			failures = append(failures, LectureError{Index: i, Error: err.Error()})
		}
	}

	return failures
}

func applyLecture(ctx context.Context, store storage.Storage, studentID int64, raw json.RawMessage) error {
	var in LectureInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return err
	}
	if err := request.Validate(in); err != nil {
		return validationMessage(err)
	}

	if in.ID != nil {
		err := store.UpdateLectureByID(ctx, *in.ID, types.LecturePatch{
			Name:      &in.Name,
			Date:      in.Date,
			StudentID: &studentID,
		})
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}

	lecture := types.Lecture{Name: in.Name, StudentID: studentID}
	if in.Date != nil {
		lecture.Date = *in.Date
	}
	_, err := store.CreateLecture(ctx, lecture)
	return err
}

// Delete handles DELETE /students/{id}. The student's lectures are
// removed with it.
//
// Success response (201):
//
//	{ "message": "Student deleted." }
func Delete(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r)
		if err != nil {
			response.RequestError(w, err)
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		if err := store.DeleteStudentByID(r.Context(), id); err != nil {
			response.StoreError(w, err, msgNotFound)
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusCreated, response.Message{Message: msgDeleted})
	}
}

func validationMessage(err error) error {
	var validateErrs validator.ValidationErrors
	if errors.As(err, &validateErrs) {
		return errors.New(response.ValidationError(validateErrs).Error)
	}
	return err
}
