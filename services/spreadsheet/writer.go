package spreadsheet

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/darasa/core/student"
)

var rosterHeaders = []interface{}{
	"Email", "Full Name", "Registration Number", "Branch", "Year", "Semester", "Section", "Phone Number",
}

// WriteRoster renders students as an xlsx workbook, one row per student.
func WriteRoster(students []student.Student) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &rosterHeaders); err != nil {
		return nil, errors.Wrap(err, "writing header row")
	}

	for i, stu := range students {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{
			stu.Email, stu.FullName, stu.RegistrationNumber, stu.Branch,
			stu.Year, stu.Semester, stu.Section, stu.PhoneNumber,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, errors.Wrap(err, "writing student row")
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf, nil
}
