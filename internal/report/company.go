package report

import (
	"fmt"
	"time"

	"github.com/foxseedlab/shussekin/internal/delimited"
)

// upstreamExportTimeLayout is how the bulk export prints timestamps; they
// are expressed in GMT regardless of the company's locale.
const upstreamExportTimeLayout = "2006-01-02 15:04:05"

var exportTimestampColumns = []string{"joined", "left", "session start", "session end"}

const exportRoomIDColumn = "room id"

// ReshapeCompanyExport parses the company-level bulk export blob,
// re-expresses its timestamp columns in the display timezone, and filters
// rows to the override room set when one is configured. Everything else
// passes through untouched.
func ReshapeCompanyExport(blob string, loc *time.Location, overrideRoomIDs []string) ([]string, [][]string, error) {
	table, err := delimited.Parse(blob)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse company export: %w", err)
	}

	tsColumns := make(map[int]struct{})
	for _, name := range exportTimestampColumns {
		if idx := table.ColumnIndex(name); idx >= 0 {
			tsColumns[idx] = struct{}{}
		}
	}

	roomFilter := make(map[string]struct{}, len(overrideRoomIDs))
	for _, id := range overrideRoomIDs {
		roomFilter[id] = struct{}{}
	}
	roomIDIdx := table.ColumnIndex(exportRoomIDColumn)
	if len(roomFilter) > 0 && roomIDIdx < 0 {
		return nil, nil, fmt.Errorf("company export has no %q column to filter on", exportRoomIDColumn)
	}

	rows := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		if len(roomFilter) > 0 {
			if _, ok := roomFilter[row[roomIDIdx]]; !ok {
				continue
			}
		}
		out := make([]string, len(row))
		copy(out, row)
		for idx := range tsColumns {
			out[idx] = rezoneExportTimestamp(out[idx], loc)
		}
		rows = append(rows, out)
	}
	return table.Header, rows, nil
}

// rezoneExportTimestamp re-expresses one upstream GMT timestamp in the
// display timezone. Values that do not parse pass through unchanged.
func rezoneExportTimestamp(value string, loc *time.Location) string {
	t, err := time.ParseInLocation(upstreamExportTimeLayout, value, time.UTC)
	if err != nil {
		return value
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(upstreamExportTimeLayout)
}
