package student_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/student"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

func setup(t *testing.T) (*student.Service, student.Repository, student.Provisioner) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewStudentRepository(db)
	prov := dummydb.NewAccountProvisioner(db)
	svc := student.NewService(repo, prov, nil, nil)
	return svc, repo, prov
}

// rosterRow builds a Row from header/cell pairs, preserving column order.
func rosterRow(pairs ...string) student.Row {
	row := student.Row{Cells: make(map[string]string, len(pairs)/2)}
	for i := 0; i < len(pairs)-1; i += 2 {
		row.Headers = append(row.Headers, pairs[i])
		row.Cells[pairs[i]] = pairs[i+1]
	}
	return row
}

func fullRow(email, pwd string) student.Row {
	return rosterRow(
		"Email", email,
		"Password", pwd,
		"Name", "Awe Mbuyi",
		"Reg No", "REG-"+email,
		"Year", "2",
		"Sem", "3",
		"Sec", "A",
	)
}

func TestService_BulkImport_emptyTable(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.BulkImport(context.Background(), nil)
	assert.Equal(t, student.ErrEmptyTable, err)

	_, err = svc.BulkImport(context.Background(), []student.Row{})
	assert.Equal(t, student.ErrEmptyTable, err)
}

func TestService_BulkImport(t *testing.T) {
	svc, repo, _ := setup(t)

	rows := []student.Row{
		fullRow("awe@test.cd", "p1"), // short passwords are the account store's concern, not the pipeline's
		rosterRow("Name", "No Creds", "Reg No", "REG-1", "Year", "2", "Sem", "3", "Sec", "A"),
		rosterRow("Email", "kim@test.cd", "Password", "s3cret!", "Name", "Kim Ilunga"),
		fullRow("deb@test.cd", "s3cret!"),
	}

	report, err := svc.BulkImport(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Success)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Errors, 2)

	// failures stay in input order, referenced by email when one resolved
	assert.Equal(t, "row 2", report.Errors[0].Reference)
	assert.Equal(t, "row 2: missing email or password", report.Errors[0].Error)
	assert.Equal(t, "kim@test.cd", report.Errors[1].Reference)
	assert.Equal(t, "row 3: missing required fields: registration_number, year, semester, section", report.Errors[1].Error)

	// successful rows are fully persisted
	students, err := repo.QueryAllStudents(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 2)
}

func TestService_BulkImport_duplicateEmail(t *testing.T) {
	svc, _, _ := setup(t)

	rows := []student.Row{
		fullRow("awe@test.cd", "s3cret!"),
		rosterRow(
			"Email", "awe@test.cd",
			"Password", "s3cret!",
			"Name", "Awe Bis",
			"Reg No", "REG-other",
			"Year", "2",
			"Sem", "3",
			"Sec", "B",
		),
	}

	report, err := svc.BulkImport(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Success)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "awe@test.cd", report.Errors[0].Reference)
	assert.Equal(t, student.ErrEmailExists.Error(), report.Errors[0].Error)
}

func TestService_BulkImport_duplicateRegistrationNumber(t *testing.T) {
	svc, _, _ := setup(t)

	row2 := fullRow("deb@test.cd", "s3cret!")
	row2.Cells["Reg No"] = "REG-awe@test.cd" // clashes with row 1

	report, err := svc.BulkImport(context.Background(), []student.Row{
		fullRow("awe@test.cd", "s3cret!"),
		row2,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Success)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "deb@test.cd", report.Errors[0].Reference)
	assert.Contains(t, report.Errors[0].Error, "created but profile not saved")
}

func TestService_BulkImport_orphanedAccountIsKept(t *testing.T) {
	db, err := dummydb.Open()
	require.NoError(t, err)
	prov := dummydb.NewAccountProvisioner(db)
	svc := student.NewService(failingRepo{}, prov, nil, nil)

	report, err := svc.BulkImport(context.Background(), []student.Row{fullRow("awe@test.cd", "s3cret!")})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0].Error, "created but profile not saved")

	// the account was NOT rolled back: provisioning the same email again clashes
	_, err = prov.CreateAccount(context.Background(), "awe@test.cd", "s3cret!")
	assert.Equal(t, student.ErrEmailExists, err)
}

func TestService_BulkImport_cancelled(t *testing.T) {
	svc, _, _ := setup(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.BulkImport(ctx, []student.Row{fullRow("awe@test.cd", "s3cret!")})
	assert.Equal(t, context.Canceled, errors.Cause(err))
}

func TestService_Create(t *testing.T) {
	svc, repo, _ := setup(t)

	stu, err := svc.Create(context.Background(), student.NewStudent{
		Email:              "awe@test.cd",
		Password:           "s3cret!",
		FullName:           "Awe Mbuyi",
		RegistrationNumber: "17BCE123",
		Branch:             "ECE",
		Year:               2,
		Semester:           3,
		Section:            "A",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stu.ID)

	got, err := repo.GetStudentByID(context.Background(), stu.ID)
	require.NoError(t, err)
	assert.Equal(t, "awe@test.cd", got.Email)

	// same email again
	_, err = svc.Create(context.Background(), student.NewStudent{
		Email:              "awe@test.cd",
		Password:           "s3cret!",
		FullName:           "Awe Bis",
		RegistrationNumber: "17BCE999",
		Year:               2,
		Semester:           3,
		Section:            "B",
	})
	assert.Equal(t, student.ErrEmailExists, err)
}

func TestService_Query(t *testing.T) {
	svc, _, _ := setup(t)

	for i, email := range []string{"awe@test.cd", "kim@test.cd"} {
		_, err := svc.Create(context.Background(), student.NewStudent{
			Email:              email,
			Password:           "s3cret!",
			FullName:           fmt.Sprintf("Student %d", i),
			RegistrationNumber: fmt.Sprintf("REG-%d", i),
			Year:               2,
			Semester:           3,
			Section:            "A",
		})
		require.NoError(t, err)
	}

	all, err := svc.Query(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := svc.Query(context.Background(), "student 1")
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "kim@test.cd", some[0].Email)
}

// failingRepo rejects every write.
type failingRepo struct{}

var _ student.Repository = failingRepo{}

func (failingRepo) CreateStudent(context.Context, student.Student) error {
	return errors.New("db is down")
}
func (failingRepo) QueryAllStudents(context.Context) ([]student.Student, error) { return nil, nil }
func (failingRepo) FilterStudents(context.Context, string) ([]student.Student, error) {
	return nil, nil
}
func (failingRepo) GetStudentByID(context.Context, string) (student.Student, error) {
	return student.Student{}, student.ErrNotFound
}
