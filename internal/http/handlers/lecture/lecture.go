// Package lecture contains the HTTP handlers for standalone lectures.
// Lectures are otherwise managed through the nested "lectures" arrays of
// the student endpoints and are deleted only together with their student.
package lecture

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/student-records-api/internal/storage"
	"github.com/aanand-mishra/student-records-api/internal/types"
	"github.com/aanand-mishra/student-records-api/internal/utils/request"
	"github.com/aanand-mishra/student-records-api/internal/utils/response"
)

const msgNotFound = "Lecture not found."

// CreateRequest is the POST /lectures body.
type CreateRequest struct {
	Name      string     `json:"name"       validate:"required"`
	Date      *time.Time `json:"date"`
	StudentID *int64     `json:"student_id" validate:"required"`
}

// Response is the client-facing projection of a lecture.
type Response struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	StudentID int64     `json:"student_id"`
}

// New handles POST /lectures.
//
//	{ "name": "Algebra", "student_id": 1 }  →  201 { "id": 4 }
//
// A student_id that matches no student yields 422.
func New(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a lecture")

		var req CreateRequest
		if err := request.DecodeJSON(r, &req); err != nil {
			response.RequestError(w, err)
			return
		}
		if err := request.Validate(req); err != nil {
			response.RequestError(w, err)
			return
		}

		lecture := types.Lecture{Name: req.Name, StudentID: *req.StudentID}
		if req.Date != nil {
			lecture.Date = *req.Date
		}

		id, err := store.CreateLecture(r.Context(), lecture)
		if err != nil {
			slog.Error("error creating lecture",
				slog.Int64("student_id", lecture.StudentID),
				slog.String("error", err.Error()))
			response.StoreError(w, err, msgNotFound)
			return
		}

		slog.Info("lecture created", slog.Int64("id", id), slog.Int64("student_id", lecture.StudentID))
		response.WriteJSON(w, http.StatusCreated, map[string]int64{"id": id})
	}
}

// GetByID handles GET /lectures/{id}.
func GetByID(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.PathID(r)
		if err != nil {
			response.RequestError(w, err)
			return
		}
		slog.Info("getting a lecture", slog.Int64("id", id))

		lecture, err := store.GetLectureByID(r.Context(), id)
		if err != nil {
			response.StoreError(w, err, msgNotFound)
			return
		}

		response.WriteJSON(w, http.StatusCreated, Response{
			ID:        lecture.ID,
			Name:      lecture.Name,
			Date:      lecture.Date,
			StudentID: lecture.StudentID,
		})
	}
}
