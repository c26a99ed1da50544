package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/dayball/internal/store"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	Count      int       `json:"count"`
	Days       []jsonDay `json:"days"`
}

type jsonDay struct {
	Date        string       `json:"date"`
	TaskCount   int          `json:"task_count"`
	Completed   int          `json:"completed"`
	WorkSeconds int64        `json:"work_seconds"`
	Work        string       `json:"work"`
	Tasks       []store.Task `json:"tasks,omitempty"`
}

// ToJSON writes one object per day. tasks is optional and keyed by date.
func ToJSON(days []store.DaySummary, tasks map[string][]store.Task, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(days),
		Days:       []jsonDay{},
	}

	for _, d := range days {
		export.Days = append(export.Days, jsonDay{
			Date:        d.Date,
			TaskCount:   d.TaskCount,
			Completed:   d.Completed,
			WorkSeconds: d.WorkSeconds,
			Work:        formatDuration(d.WorkSeconds),
			Tasks:       tasks[d.Date],
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
