// Package xlsx parses and produces the spreadsheets the API exchanges:
// bulk user imports and report exports.
package xlsx

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	authmodels "skillaudit/internal/auth/models"
	authservice "skillaudit/internal/auth/service"
	dErrors "skillaudit/pkg/domain-errors"
)

// User import column order. Row 1 is a header and is skipped.
const (
	colUsername = iota
	colPassword
	colFirstName
	colLastName
	colEmail
	colMobile
	colRole
)

// ParseUsers reads the user import sheet. Blank rows are skipped; short
// rows surface later as per-row errors from the import, not a parse
// failure.
func ParseUsers(r io.Reader) ([]authservice.ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "file is not a readable xlsx workbook")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "could not read worksheet")
	}
	if len(rows) < 2 {
		return nil, dErrors.New(dErrors.CodeValidation, "worksheet has no user rows below the header")
	}

	var out []authservice.ImportRow
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		out = append(out, authservice.ImportRow{
			Row: i + 2, // 1-based sheet row, after the header
			Params: authservice.CreateParams{
				Username:  cell(row, colUsername),
				Password:  cell(row, colPassword),
				FirstName: cell(row, colFirstName),
				LastName:  cell(row, colLastName),
				Email:     cell(row, colEmail),
				Mobile:    cell(row, colMobile),
				Role:      cell(row, colRole),
			},
		})
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ExportUsers writes the account list as a workbook. Password hashes never
// leave the store.
func ExportUsers(users []*authmodels.User) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	headers := []string{"Username", "First Name", "Last Name", "Email", "Mobile", "Role", "Active"}
	for i, h := range headers {
		setCell(f, sheet, i+1, 1, h)
	}
	for rowIdx, u := range users {
		row := rowIdx + 2
		setCell(f, sheet, 1, row, u.Username)
		setCell(f, sheet, 2, row, u.FirstName)
		setCell(f, sheet, 3, row, u.LastName)
		setCell(f, sheet, 4, row, u.Email)
		setCell(f, sheet, 5, row, u.Mobile)
		setCell(f, sheet, 6, row, string(u.Role))
		setCell(f, sheet, 7, row, u.Active)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write users workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) {
	name, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(sheet, name, value)
}
