package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// LoadSessions reads session ids from the first sheet of an xlsx file. The
// id column is found by header ("session", then "id"), falling back to the
// first column. Blank and repeated ids are skipped.
func LoadSessions(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	idIdx := -1
	for i, h := range rows[0] {
		l := strings.ToLower(strings.TrimSpace(h))
		if strings.Contains(l, "session") {
			idIdx = i
			break
		}
		if idIdx == -1 && strings.Contains(l, "id") {
			idIdx = i
		}
	}
	if idIdx == -1 {
		idIdx = 0
	}

	seen := map[string]struct{}{}
	var out []string
	for _, r := range rows[1:] {
		if idIdx >= len(r) {
			continue
		}
		id := strings.Trim(strings.TrimSpace(r[idIdx]), "/")
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
