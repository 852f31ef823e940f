package student

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records-api/internal/storage"
	"github.com/aanand-mishra/student-records-api/internal/types"
)

func TestMap(t *testing.T) {
	date := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	got := Map(types.Student{
		ID: 7, Name: "Ann", Email: "a@x.com", Score1: 1, Score2: 2, Score3: 3, Class: "A",
		Lectures: []types.Lecture{{ID: 3, Name: "Algebra", Date: date, StudentID: 7}},
	})

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 7, "name": "Ann", "email": "a@x.com",
		"score1": 1, "score2": 2, "score3": 3, "class": "A",
		"lectures": [{"id": 3, "name": "Algebra", "date": "2024-01-02T03:04:05Z"}]
	}`, string(data))
}

func TestMapWithoutLectures(t *testing.T) {
	data, err := json.Marshal(Map(types.Student{ID: 1}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"lectures":[]`)

	data, err = json.Marshal(MapAll(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestCreateRequestLectures(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	req := CreateRequest{Lectures: []LectureInput{{Name: "A"}, {Name: "B", Date: &date}}}

	lectures := req.lectures()
	require.Len(t, lectures, 2)
	assert.True(t, lectures[0].Date.IsZero())
	assert.Equal(t, date, lectures[1].Date)
}

// lectureStore records lecture writes and fails the ones named "fail".
type lectureStore struct {
	storage.Storage

	created []types.Lecture
	updated map[int64]types.LecturePatch
}

func (s *lectureStore) CreateLecture(_ context.Context, l types.Lecture) (int64, error) {
	if l.Name == "fail" {
		return 0, errors.New("insert lecture: disk full")
	}
	s.created = append(s.created, l)
	return int64(len(s.created)), nil
}

func (s *lectureStore) UpdateLectureByID(_ context.Context, id int64, p types.LecturePatch) error {
	if id != 1 {
		return storage.ErrNotFound
	}
	s.updated[id] = p
	return nil
}

func TestApplyLecturesContinuesAfterFailure(t *testing.T) {
	store := &lectureStore{updated: map[int64]types.LecturePatch{}}
	entries := []json.RawMessage{
		json.RawMessage(`{"name":"fail"}`),
		json.RawMessage(`{"id":1,"name":"Renamed"}`),
		json.RawMessage(`[1,2]`),
		json.RawMessage(`{"id":9,"name":"New"}`),
	}

	failures := applyLectures(context.Background(), store, 5, entries)

	require.Len(t, failures, 2)
	assert.Equal(t, 0, failures[0].Index)
	assert.Contains(t, failures[0].Error, "disk full")
	assert.Equal(t, 2, failures[1].Index)

	require.Contains(t, store.updated, int64(1))
	assert.Equal(t, "Renamed", *store.updated[1].Name)
	assert.Equal(t, int64(5), *store.updated[1].StudentID)

	require.Len(t, store.created, 1)
	assert.Equal(t, types.Lecture{Name: "New", StudentID: 5}, store.created[0])
}
