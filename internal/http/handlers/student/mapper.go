package student

import (
	"time"

	"github.com/aanand-mishra/student-records-api/internal/types"
)

// Response is the client-facing projection of a student.
type Response struct {
	ID       int64             `json:"id"`
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Score1   float64           `json:"score1"`
	Score2   float64           `json:"score2"`
	Score3   float64           `json:"score3"`
	Class    string            `json:"class"`
	Lectures []LectureResponse `json:"lectures"`
}

// LectureResponse is a lecture nested in a student Response.
type LectureResponse struct {
	ID   int64     `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// Map flattens a student and its lectures into a Response.
// Lectures is never null in the encoded JSON.
func Map(s types.Student) Response {
	lectures := make([]LectureResponse, 0, len(s.Lectures))
	for _, l := range s.Lectures {
		lectures = append(lectures, LectureResponse{ID: l.ID, Name: l.Name, Date: l.Date})
	}

	return Response{
		ID:       s.ID,
		Name:     s.Name,
		Email:    s.Email,
		Score1:   s.Score1,
		Score2:   s.Score2,
		Score3:   s.Score3,
		Class:    s.Class,
		Lectures: lectures,
	}
}

// MapAll maps every student, returning an empty (non-nil) slice for none.
func MapAll(students []types.Student) []Response {
	out := make([]Response, 0, len(students))
	for _, s := range students {
		out = append(out, Map(s))
	}
	return out
}
