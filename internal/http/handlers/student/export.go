package student

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/aanand-mishra/student-records-api/internal/storage"
	"github.com/aanand-mishra/student-records-api/internal/types"
	"github.com/aanand-mishra/student-records-api/internal/utils/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeader = []any{"id", "name", "email", "score1", "score2", "score3", "class", "lectures"}

// Export handles GET /students/export and streams every student as one
// row of an .xlsx workbook. The last column is the lecture count.
func Export(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("exporting students")

		students, err := store.GetStudents(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.StoreError(w, err, msgNotFound)
			return
		}

		f, err := workbook(students)
		if err != nil {
			response.InternalError(w, fmt.Errorf("build workbook: %w", err))
			return
		}
		defer func() {
			if err := f.Close(); err != nil {
				slog.Warn("error closing workbook", slog.String("error", err.Error()))
			}
		}()

		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="students.xlsx"`)
		w.WriteHeader(http.StatusOK)
		if err := f.Write(w); err != nil {
			slog.Error("error writing workbook", slog.String("error", err.Error()))
		}
	}
}

func workbook(students []types.Student) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, s := range students {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []any{s.ID, s.Name, s.Email, s.Score1, s.Score2, s.Score3, s.Class, len(s.Lectures)}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write student %d: %w", s.ID, err)
		}
	}

	return f, nil
}
