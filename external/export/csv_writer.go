package export

import (
	"archive/zip"
	"compress/flate"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/foxseedlab/shussekin/internal/classroom"
	"github.com/foxseedlab/shussekin/internal/report"
)

var roomReportHeader = []string{
	"Room Name",
	"Entry ID",
	"Participant ID",
	"First Name",
	"Last Name",
	"Email",
	"Title",
	"Company",
	"Country",
	"City",
	"State",
	"Postal Code",
	"Phone Number",
	"Job Role",
	"Joined",
	"Left",
	"Duration",
	"Attention",
}

var chatReportHeader = []string{"Time", "User Name", "User Type", "Chat Type", "Message"}

// CSVEmitter writes report files into one output directory and bundles
// them into a zip archive at the end of the run.
type CSVEmitter struct {
	outputDir string
	fromDate  string
	toDate    string
}

func NewCSVEmitter(outputDir, fromDate, toDate string) report.Emitter {
	return &CSVEmitter{outputDir: outputDir, fromDate: fromDate, toDate: toDate}
}

func (e *CSVEmitter) WriteRoomReport(roomID string, rows []report.Row) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	name := fmt.Sprintf("%s_%s_%s_%s.csv", roomID, rows[0].RoomName, e.fromDate, e.toDate)
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.RoomName,
			r.ThirdPartyRoomID,
			r.ParticipantID,
			r.FirstName,
			r.LastName,
			r.Email,
			r.Title,
			r.Company,
			r.Country,
			r.City,
			r.State,
			r.PostalCode,
			r.Phone,
			r.JobRole,
			r.Joined,
			r.Left,
			strconv.FormatInt(r.Duration, 10),
			strconv.FormatInt(r.Attention, 10),
		})
	}
	return e.writeCSV(name, roomReportHeader, records)
}

func (e *CSVEmitter) WriteChatReport(roomID, roomName string, chatType classroom.ChatType, rows []report.ChatRow) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	name := fmt.Sprintf("%s_%s_%s_chat_%s_%s.csv", roomID, roomName, chatType, e.fromDate, e.toDate)
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.Time, r.UserName, r.UserType, r.ChatType, r.Message})
	}
	return e.writeCSV(name, chatReportHeader, records)
}

func (e *CSVEmitter) WriteCompanyReport(header []string, rows [][]string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	name := fmt.Sprintf("Company_Attendance_%s_%s.csv", e.fromDate, e.toDate)
	return e.writeCSV(name, header, rows)
}

func (e *CSVEmitter) writeCSV(fileName string, header []string, records [][]string) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(e.outputDir, sanitizeFileName(fileName))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", err
	}
	if err := w.WriteAll(records); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// ArchiveOutputs zips every file in the output directory except earlier
// archives, so re-runs do not nest zips inside zips.
func (e *CSVEmitter) ArchiveOutputs(zipFileName string) (string, error) {
	entries, err := os.ReadDir(e.outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to read output directory: %w", err)
	}

	zipPath := filepath.Join(e.outputDir, sanitizeFileName(zipFileName))
	f, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".zip") {
			continue
		}
		if err := addFileToZip(zw, filepath.Join(e.outputDir, entry.Name()), entry.Name()); err != nil {
			_ = zw.Close()
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive: %w", err)
	}
	return zipPath, nil
}

func addFileToZip(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = src.Close()
	}()

	dst, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}

// sanitizeFileName keeps room names from escaping the output directory or
// producing unportable file names.
func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '/', r == '\\', r == ':', r == '*', r == '?', r == '"', r == '<', r == '>', r == '|':
			return '-'
		}
		return r
	}, name)
}
