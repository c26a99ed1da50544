package store

import (
	"bytes"
	"encoding/json"
)

type Task struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// DayRecord holds the tasks and accumulated work time for one date.
type DayRecord struct {
	Tasks       []Task `json:"tasks"`
	WorkSeconds int64  `json:"work_seconds"`

	// legacy is set when the record was decoded from a bare task array.
	// It is cleared the first time the date is mutated.
	legacy bool
}

// dayRecordJSON has the same layout as DayRecord without its methods.
type dayRecordJSON DayRecord

func (d *DayRecord) UnmarshalJSON(data []byte) error {
	if b := bytes.TrimSpace(data); len(b) > 0 && b[0] == '[' {
		var tasks []Task
		if err := json.Unmarshal(b, &tasks); err != nil {
			return err
		}
		*d = DayRecord{Tasks: tasks, legacy: true}
		return nil
	}
	var rec dayRecordJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*d = DayRecord(rec)
	return nil
}

func (d DayRecord) MarshalJSON() ([]byte, error) {
	tasks := d.Tasks
	if tasks == nil {
		tasks = []Task{}
	}
	if d.legacy {
		return json.Marshal(tasks)
	}
	d.Tasks = tasks
	return json.Marshal(dayRecordJSON(d))
}

// Legacy reports whether the record is still in the bare-array shape.
func (d DayRecord) Legacy() bool { return d.legacy }

// DaySummary is an aggregate of one date, used by reports and export.
type DaySummary struct {
	Date        string
	TaskCount   int
	Completed   int
	WorkSeconds int64
}
