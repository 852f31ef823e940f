package student

import (
	"encoding/json"
	"time"

	"github.com/aanand-mishra/student-records-api/internal/types"
)

// CreateRequest is the POST /students body.
// Scores are pointers so that a score of 0 still counts as present.
type CreateRequest struct {
	Name     string         `json:"name"   validate:"required"`
	Email    string         `json:"email"  validate:"required"`
	Score1   *float64       `json:"score1" validate:"required"`
	Score2   *float64       `json:"score2" validate:"required"`
	Score3   *float64       `json:"score3" validate:"required"`
	Class    string         `json:"class"  validate:"required"`
	Lectures []LectureInput `json:"lectures" validate:"dive"`
}

// LectureInput is one entry of a nested lectures array.
// ID is only meaningful on update.
type LectureInput struct {
	ID   *int64     `json:"id"`
	Name string     `json:"name" validate:"required"`
	Date *time.Time `json:"date"`
}

// UpdateRequest is the PUT /students/{id} body. Absent (or null) fields
// are left untouched. Lecture entries stay raw so that one malformed entry
// can be reported without rejecting the whole request.
type UpdateRequest struct {
	Name     *string           `json:"name"`
	Email    *string           `json:"email"`
	Score1   *float64          `json:"score1"`
	Score2   *float64          `json:"score2"`
	Score3   *float64          `json:"score3"`
	Class    *string           `json:"class"`
	Lectures []json.RawMessage `json:"lectures"`
}

// LectureError reports a nested lecture entry that was skipped.
type LectureError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// UpdateResponse is the PUT /students/{id} success body.
type UpdateResponse struct {
	ID            int64          `json:"id"`
	LectureErrors []LectureError `json:"lecture_errors,omitempty"`
}

func (r CreateRequest) student() types.Student {
	return types.Student{
		Name:   r.Name,
		Email:  r.Email,
		Score1: *r.Score1,
		Score2: *r.Score2,
		Score3: *r.Score3,
		Class:  r.Class,
	}
}

func (r CreateRequest) lectures() []types.Lecture {
	lectures := make([]types.Lecture, 0, len(r.Lectures))
	for _, in := range r.Lectures {
		lecture := types.Lecture{Name: in.Name}
		if in.Date != nil {
			lecture.Date = *in.Date
		}
		lectures = append(lectures, lecture)
	}
	return lectures
}

func (r UpdateRequest) patch() types.StudentPatch {
	return types.StudentPatch{
		Name:   r.Name,
		Email:  r.Email,
		Score1: r.Score1,
		Score2: r.Score2,
		Score3: r.Score3,
		Class:  r.Class,
	}
}
