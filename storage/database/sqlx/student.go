package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/student"
)

const uniqueViolation = "23505"

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, stu student.Student) error {
	query := `
	INSERT INTO students (id, email, full_name, registration_number, branch, year, semester, section, phone_number, created_at, updated_at)
	VALUES (:id, :email, :full_name, :registration_number, :branch, :year, :semester, :section, :phone_number, :created_at, :updated_at)`

	if _, err := repo.db.NamedExecContext(ctx, query, stu); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return student.ErrRegNumExists
		}
		return errors.Wrap(err, "inserting student")
	}
	return nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var students []student.Student
	query := `SELECT * FROM students ORDER BY full_name`
	if err := repo.db.SelectContext(ctx, &students, query); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo *studentRepository) FilterStudents(ctx context.Context, search string) ([]student.Student, error) {
	var students []student.Student
	query := `
	SELECT * FROM students
	WHERE full_name ILIKE $1 OR registration_number ILIKE $1 OR branch ILIKE $1
	ORDER BY full_name`
	if err := repo.db.SelectContext(ctx, &students, query, "%"+search+"%"); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var stu student.Student
	query := `SELECT * FROM students WHERE id = $1`
	if err := repo.db.GetContext(ctx, &stu, query, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return stu, nil
}
