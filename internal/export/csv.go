package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/dayball/internal/store"
)

func ToCSV(days []store.DaySummary, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"Date", "Tasks", "Completed", "Work (s)", "Work"}); err != nil {
		return err
	}

	for _, d := range days {
		row := []string{
			d.Date,
			strconv.Itoa(d.TaskCount),
			strconv.Itoa(d.Completed),
			strconv.FormatInt(d.WorkSeconds, 10),
			formatDuration(d.WorkSeconds),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
