// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import "time"

// Student represents a student record in our system.
// Lectures is populated by reads and ignored by writes.
type Student struct {
	ID       int64
	Name     string
	Email    string
	Score1   float64
	Score2   float64
	Score3   float64
	Class    string
	Lectures []Lecture
}

// Lecture is a class session owned by exactly one student.
type Lecture struct {
	ID        int64
	Name      string
	Date      time.Time
	StudentID int64
}

// StudentPatch carries a partial student update.
// A nil field means "leave the stored value unchanged".
type StudentPatch struct {
	Name   *string
	Email  *string
	Score1 *float64
	Score2 *float64
	Score3 *float64
	Class  *string
}

// Empty reports whether the patch sets no field at all.
func (p StudentPatch) Empty() bool {
	return p.Name == nil && p.Email == nil &&
		p.Score1 == nil && p.Score2 == nil && p.Score3 == nil &&
		p.Class == nil
}

// LecturePatch carries a partial lecture update.
type LecturePatch struct {
	Name      *string
	Date      *time.Time
	StudentID *int64
}
