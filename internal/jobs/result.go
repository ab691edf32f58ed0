package jobs

import (
	"github.com/samber/lo"

	"github.com/rudderlabs/sheetsync/internal/model"
	"github.com/rudderlabs/sheetsync/internal/tableops"
)

// Result is returned to every caller of a job, on success and on failure.
type Result struct {
	Success      bool     `json:"success"`
	Details      *Details `json:"details,omitempty"`
	Message      string   `json:"message,omitempty"`
	ErrorKind    string   `json:"error_kind,omitempty"`
	ErrorDetails string   `json:"error_details,omitempty"`
	Logs         []string `json:"logs,omitempty"`
}

type Details struct {
	RowsProcessed    *int     `json:"rows_processed,omitempty"`
	ColumnsProcessed *int     `json:"columns_processed,omitempty"`
	ColumnsCount     *int     `json:"columns_count,omitempty"`
	Columns          []string `json:"columns,omitempty"`
	Message          string   `json:"message"`
	Logs             []string `json:"logs"`
}

func createdResult(id string, res *tableops.CreateResult, logs []string) *Result {
	return &Result{
		Success: true,
		Details: &Details{
			ColumnsCount: lo.ToPtr(res.ColumnsCount),
			Columns:      res.Columns,
			Message:      "table created: " + id,
			Logs:         logs,
		},
	}
}

func loadedResult(message string, res *tableops.LoadResult, logs []string) *Result {
	return &Result{
		Success: true,
		Details: &Details{
			RowsProcessed:    lo.ToPtr(res.RowsProcessed),
			ColumnsProcessed: lo.ToPtr(res.ColumnsProcessed),
			Message:          message,
			Logs:             logs,
		},
	}
}

func failedResult(message string, err error, logs []string) *Result {
	res := &Result{
		Success: false,
		Message: message,
		Logs:    logs,
	}
	if err != nil {
		res.ErrorKind = model.ErrorKind(err)
		res.ErrorDetails = err.Error()
	}
	return res
}

// Rows returns the processed row count, or zero when the job loaded nothing.
func (r *Result) Rows() int {
	if r.Details == nil || r.Details.RowsProcessed == nil {
		return 0
	}
	return *r.Details.RowsProcessed
}
