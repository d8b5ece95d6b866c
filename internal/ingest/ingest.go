// Package ingest reads email batches from local input files. Two formats
// are supported: a JSON array of {id, subject, body} objects and an XLSX
// export with id/subject/body columns.
package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/shipment-cli/internal/model"
)

// ReadEmails loads emails from path, dispatching on file extension.
func ReadEmails(path string) ([]model.Email, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(path)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return nil, eris.Errorf("ingest: unsupported input format %q", filepath.Ext(path))
	}
}

// ReadJSON reads a JSON array of emails. Entries without an ID get a
// positional one so downstream records stay traceable.
func ReadJSON(path string) ([]model.Email, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}

	var emails []model.Email
	if err := json.Unmarshal(data, &emails); err != nil {
		return nil, eris.Wrapf(err, "ingest: parse %s", path)
	}

	assignMissingIDs(emails)
	return emails, nil
}

// ReadXLSX reads the first sheet of an XLSX export. The header row maps
// id/subject/body columns by name, case-insensitively; unknown columns are
// ignored.
func ReadXLSX(path string) ([]model.Email, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("ingest: %s has no sheets", path)
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("ingest: %s is empty", path)
	}

	cols := headerIndex(rowToStrings(sheet.Rows[0]))
	if _, ok := cols["body"]; !ok {
		return nil, eris.Errorf("ingest: %s has no body column", path)
	}

	var emails []model.Email
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		email := model.Email{
			ID:      cellAt(cells, cols, "id"),
			Subject: cellAt(cells, cols, "subject"),
			Body:    cellAt(cells, cols, "body"),
		}
		if email.Subject == "" && email.Body == "" {
			continue
		}
		emails = append(emails, email)
	}

	assignMissingIDs(emails)
	zap.L().Debug("ingest: read xlsx", zap.String("path", path), zap.Int("emails", len(emails)))
	return emails, nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func cellAt(cells []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func rowToStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		out[i] = cell.String()
	}
	return out
}

func assignMissingIDs(emails []model.Email) {
	for i := range emails {
		if strings.TrimSpace(emails[i].ID) == "" {
			emails[i].ID = fmt.Sprintf("email-%03d", i+1)
		}
	}
}
