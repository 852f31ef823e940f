package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aanand-mishra/student-records-api/internal/storage"
	"github.com/aanand-mishra/student-records-api/internal/types"
)

var _ storage.Storage = (*Store)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// CreateStudent inserts the student row first to obtain its generated id,
// then one row per nested lecture bound to that id. Everything happens in
// one transaction, so a failing lecture leaves no half-created student.
// ─────────────────────────────────────────────────────────────────────────────
func (s *Store) CreateStudent(ctx context.Context, student types.Student, lectures []types.Lecture) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: begin: %w", err)
	}
	defer rollback(tx)

	var id int64
	err = tx.QueryRowContext(ctx, s.rebind(
		`INSERT INTO students (name, email, score1, score2, score3, class_name)
		 VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		student.Name, student.Email,
		student.Score1, student.Score2, student.Score3,
		student.Class,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: insert student: %w", classify(err))
	}

	for i, lecture := range lectures {
		lecture.StudentID = id
		if _, err := s.insertLecture(ctx, tx, lecture); err != nil {
			return 0, fmt.Errorf("CreateStudent: lecture %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("CreateStudent: commit: %w", err)
	}

	return id, nil
}

// GetStudentByID fetches one student and its lectures in insertion order.
func (s *Store) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	var student types.Student

	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, name, email, score1, score2, score3, class_name
		 FROM students WHERE id = ? LIMIT 1`), id,
	).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Score1,
		&student.Score2,
		&student.Score3,
		&student.Class,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, fmt.Errorf("no student found with id %d: %w", id, storage.ErrNotFound)
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	byStudent, err := s.lectures(ctx, "WHERE student_id = ?", id)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: %w", err)
	}

	student.Lectures = byStudent[id]
	if student.Lectures == nil {
		student.Lectures = make([]types.Lecture, 0)
	}

	return student, nil
}

// GetStudents returns all students ordered by id, each with its lectures.
// Lectures are fetched in a single second query and grouped in memory.
func (s *Store) GetStudents(ctx context.Context) ([]types.Student, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, score1, score2, score3, class_name
		 FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}

	students := make([]types.Student, 0)
	for rows.Next() {
		var student types.Student
		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Email,
			&student.Score1,
			&student.Score2,
			&student.Score3,
			&student.Class,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}
	// Close before the next query: sqlite runs on a single connection.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	byStudent, err := s.lectures(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}

	for i := range students {
		students[i].Lectures = byStudent[students[i].ID]
		if students[i].Lectures == nil {
			students[i].Lectures = make([]types.Lecture, 0)
		}
	}

	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UpdateStudentByID builds the SET clause from the fields present in the
// patch. Fields left nil keep their stored value. An empty patch only
// checks that the student exists.
// ─────────────────────────────────────────────────────────────────────────────
func (s *Store) UpdateStudentByID(ctx context.Context, id int64, patch types.StudentPatch) error {
	if patch.Empty() {
		if err := s.studentExists(ctx, id); err != nil {
			return fmt.Errorf("UpdateStudentByID: %w", err)
		}
		return nil
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.Score1 != nil {
		set("score1", *patch.Score1)
	}
	if patch.Score2 != nil {
		set("score2", *patch.Score2)
	}
	if patch.Score3 != nil {
		set("score3", *patch.Score3)
	}
	if patch.Class != nil {
		set("class_name", *patch.Class)
	}
	args = append(args, id)

	query := "UPDATE students SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	result, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("UpdateStudentByID: exec: %w", classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateStudentByID: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no student found with id %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

// DeleteStudentByID removes the student's lectures and then the student
// itself inside one transaction, so no lecture is ever left orphaned.
func (s *Store) DeleteStudentByID(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: begin: %w", err)
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx, s.rebind("DELETE FROM lectures WHERE student_id = ?"), id); err != nil {
		return fmt.Errorf("DeleteStudentByID: delete lectures: %w", err)
	}

	result, err := tx.ExecContext(ctx, s.rebind("DELETE FROM students WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: delete student: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no student found with id %d: %w", id, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("DeleteStudentByID: commit: %w", err)
	}

	return nil
}

func (s *Store) studentExists(ctx context.Context, id int64) error {
	var found int64
	err := s.db.QueryRowContext(ctx, s.rebind("SELECT id FROM students WHERE id = ?"), id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("no student found with id %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup student: %w", err)
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}
