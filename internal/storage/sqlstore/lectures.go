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

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateLecture inserts a standalone lecture.
func (s *Store) CreateLecture(ctx context.Context, lecture types.Lecture) (int64, error) {
	id, err := s.insertLecture(ctx, s.db, lecture)
	if err != nil {
		return 0, fmt.Errorf("CreateLecture: %w", err)
	}
	return id, nil
}

func (s *Store) insertLecture(ctx context.Context, q queryer, lecture types.Lecture) (int64, error) {
	date := lecture.Date
	if date.IsZero() {
		date = now()
	}

	var id int64
	err := q.QueryRowContext(ctx, s.rebind(
		`INSERT INTO lectures (name, date_created, student_id)
		 VALUES (?, ?, ?) RETURNING id`),
		lecture.Name, normalize(date), lecture.StudentID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert lecture: %w", classify(err))
	}

	return id, nil
}

// GetLectureByID fetches exactly one lecture row matched by primary key.
func (s *Store) GetLectureByID(ctx context.Context, id int64) (types.Lecture, error) {
	var lecture types.Lecture

	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, name, date_created, student_id FROM lectures WHERE id = ? LIMIT 1`), id,
	).Scan(&lecture.ID, &lecture.Name, &lecture.Date, &lecture.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Lecture{}, fmt.Errorf("no lecture found with id %d: %w", id, storage.ErrNotFound)
		}
		return types.Lecture{}, fmt.Errorf("GetLectureByID: scan: %w", err)
	}

	lecture.Date = lecture.Date.UTC()
	return lecture, nil
}

// UpdateLectureByID applies the non-nil fields of patch. Setting StudentID
// rebinds the lecture to another student.
func (s *Store) UpdateLectureByID(ctx context.Context, id int64, patch types.LecturePatch) error {
	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Date != nil {
		sets = append(sets, "date_created = ?")
		args = append(args, normalize(*patch.Date))
	}
	if patch.StudentID != nil {
		sets = append(sets, "student_id = ?")
		args = append(args, *patch.StudentID)
	}

	if len(sets) == 0 {
		if _, err := s.GetLectureByID(ctx, id); err != nil {
			return fmt.Errorf("UpdateLectureByID: %w", err)
		}
		return nil
	}
	args = append(args, id)

	query := "UPDATE lectures SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	result, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("UpdateLectureByID: exec: %w", classify(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateLectureByID: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no lecture found with id %d: %w", id, storage.ErrNotFound)
	}

	return nil
}

// lectures loads lecture rows matching the optional where clause and
// groups them by owning student, preserving id (insertion) order.
func (s *Store) lectures(ctx context.Context, where string, args ...any) (map[int64][]types.Lecture, error) {
	query := "SELECT id, name, date_created, student_id FROM lectures " + where + " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query lectures: %w", err)
	}
	defer rows.Close()

	byStudent := make(map[int64][]types.Lecture)
	for rows.Next() {
		var lecture types.Lecture
		if err := rows.Scan(&lecture.ID, &lecture.Name, &lecture.Date, &lecture.StudentID); err != nil {
			return nil, fmt.Errorf("scan lecture: %w", err)
		}
		lecture.Date = lecture.Date.UTC()
		byStudent[lecture.StudentID] = append(byStudent[lecture.StudentID], lecture)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lectures iteration: %w", err)
	}

	return byStudent, nil
}

// normalize drops precision postgres cannot store so both dialects
// return the same value that was written.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
