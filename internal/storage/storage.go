// Package storage defines the Storage interface: a contract that any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so the relational store, the
// redis cache decorator, and test fakes are interchangeable.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/student-records-api/internal/types"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a uniqueness
	// constraint (students.email).
	ErrDuplicate = errors.New("record already exists")

	// ErrInvalidReference is returned when a lecture points at a student
	// that does not exist.
	ErrInvalidReference = errors.New("referenced student does not exist")
)

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts a student and its nested lectures in one
	// transaction and returns the generated student ID. Lectures with a
	// zero Date are stamped with the current time.
	CreateStudent(ctx context.Context, student types.Student, lectures []types.Lecture) (int64, error)

	// GetStudentByID fetches a single student with its lectures.
	// Returns ErrNotFound if absent.
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)

	// GetStudents returns every student with its lectures.
	// Returns an empty slice (not nil) if there are no students.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudentByID applies the non-nil fields of patch.
	UpdateStudentByID(ctx context.Context, id int64, patch types.StudentPatch) error

	// DeleteStudentByID removes the student and every lecture it owns.
	DeleteStudentByID(ctx context.Context, id int64) error

	// CreateLecture inserts a standalone lecture bound to lecture.StudentID.
	CreateLecture(ctx context.Context, lecture types.Lecture) (int64, error)

	// GetLectureByID fetches a single lecture. Returns ErrNotFound if absent.
	GetLectureByID(ctx context.Context, id int64) (types.Lecture, error)

	// UpdateLectureByID applies the non-nil fields of patch.
	UpdateLectureByID(ctx context.Context, id int64, patch types.LecturePatch) error

	Close() error
}
