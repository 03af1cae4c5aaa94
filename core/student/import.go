package student

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/trezcool/darasa/core"
)

// ErrEmptyTable is returned when an uploaded roster has no data rows at all;
// the batch is rejected wholesale and no report is produced.
var ErrEmptyTable = errors.New("spreadsheet contains no data rows")

type (
	// RowOutcome is the immutable result of importing one roster row.
	RowOutcome struct {
		Reference string // resolved email, or "row N" when no email resolved
		ID        string // provisioned account ID, set on success only
		Error     string
	}

	ImportError struct {
		Reference string `json:"reference"`
		Error     string `json:"error"`
	}

	// BatchReport aggregates a bulk import run.
	BatchReport struct {
		Success int           `json:"success"`
		Failed  int           `json:"failed"`
		Errors  []ImportError `json:"errors"`
	}
)

func (o RowOutcome) Failed() bool { return o.Error != "" }

// BuildReport folds row outcomes into a BatchReport. Failure reasons are kept
// in emission order and never deduplicated: repeats flag a systemic pattern
// in the source file (e.g. every row missing a column).
func BuildReport(outcomes []RowOutcome) *BatchReport {
	report := &BatchReport{Errors: make([]ImportError, 0, len(outcomes))}
	for _, o := range outcomes {
		if o.Failed() {
			report.Failed++
			report.Errors = append(report.Errors, ImportError{Reference: o.Reference, Error: o.Error})
		} else {
			report.Success++
		}
	}
	return report
}

// BulkImport runs the roster import pipeline over rows, in order:
// resolve -> normalize -> validate -> provision -> persist.
//
// Rows are processed strictly one at a time: the identity provider is a
// remote, rate-limited service and concurrent account creation would race on
// duplicate emails. A failing row never aborts the batch; N rows always yield
// N outcomes, in input order. Cancellation is honored between rows only, so a
// row's provision+persist pair is never abandoned halfway.
func (svc *Service) BulkImport(ctx context.Context, rows []Row) (*BatchReport, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	outcomes := make([]RowOutcome, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcomes = append(outcomes, svc.importRow(ctx, i+1, row))
	}

	report := BuildReport(outcomes)
	svc.sendImportReport(report, len(rows))
	return report, nil
}

func (svc *Service) importRow(ctx context.Context, ordinal int, row Row) RowOutcome {
	rec := ResolveRecord(row)

	ref := rec.Email
	if ref == "" {
		ref = fmt.Sprintf("row %d", ordinal)
	}
	fail := func(reason string) RowOutcome {
		return RowOutcome{Reference: ref, Error: reason}
	}

	if !rec.HasCredentials() {
		return fail(fmt.Sprintf("row %d: missing email or password", ordinal))
	}
	if missing := rec.MissingProfileFields(); len(missing) > 0 {
		return fail(fmt.Sprintf("row %d: missing required fields: %s", ordinal, strings.Join(missing, ", ")))
	}

	id, err := svc.provisioner.CreateAccount(ctx, rec.Email, rec.Password)
	if err != nil {
		return fail(err.Error())
	}
	if id == "" {
		return fail("account creation failed")
	}

	now := time.Now().UTC()
	stu := Student{
		ID:                 id,
		Email:              rec.Email,
		FullName:           rec.FullName,
		RegistrationNumber: rec.RegistrationNumber,
		Branch:             rec.Branch,
		Year:               rec.Year,
		Semester:           rec.Semester,
		Section:            rec.Section,
		PhoneNumber:        rec.PhoneNumber,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err = svc.repo.CreateStudent(ctx, stu); err != nil {
		// The account is NOT rolled back: retrying would hit a duplicate-email
		// error on the now-existing account. Operators reconcile orphaned
		// accounts manually from this reason string.
		return fail(fmt.Sprintf("account %s created but profile not saved: %v", id, err))
	}

	return RowOutcome{Reference: ref, ID: id}
}

func (svc *Service) sendImportReport(report *BatchReport, total int) {
	if svc.mailSvc == nil || svc.conf == nil || svc.conf.ImportReportEmail == "" {
		return
	}

	body := new(strings.Builder)
	fmt.Fprintf(body, "Student import finished: %d rows, %d imported, %d failed.\n", total, report.Success, report.Failed)
	for _, e := range report.Errors {
		fmt.Fprintf(body, "- %s: %s\n", e.Reference, e.Error)
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{{Address: svc.conf.ImportReportEmail}},
		Subject:     "Student import report",
		TextContent: body.String(),
	})
}
