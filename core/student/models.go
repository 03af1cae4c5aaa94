package student

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// DefaultBranch is assumed when a roster omits the branch column.
const DefaultBranch = "CSE"

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("a student with this email already exists")
	ErrRegNumExists = errors.New("a student with this registration number already exists")
)

type (
	// Repository is the profile record store.
	Repository interface {
		// CreateStudent persists a profile keyed by its provisioned account ID.
		// A registration number clash returns ErrRegNumExists.
		CreateStudent(ctx context.Context, stu Student) error
		QueryAllStudents(ctx context.Context) ([]Student, error)
		// FilterStudents does a case-insensitive match on one of
		// Student.FullName, Student.RegistrationNumber or Student.Branch.
		FilterStudents(ctx context.Context, search string) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
	}

	// Provisioner creates an authenticable account with the identity provider.
	// A duplicate email returns ErrEmailExists; accounts are never partially created.
	Provisioner interface {
		CreateAccount(ctx context.Context, email, password string) (string, error)
	}
)

type Student struct {
	ID                 string    `json:"id" db:"id"` // provisioned account ID
	Email              string    `json:"email" db:"email"`
	FullName           string    `json:"full_name" db:"full_name"`
	RegistrationNumber string    `json:"registration_number" db:"registration_number"`
	Branch             string    `json:"branch" db:"branch"`
	Year               int       `json:"year" db:"year"`
	Semester           int       `json:"semester" db:"semester"`
	Section            string    `json:"section" db:"section"`
	PhoneNumber        string    `json:"phone_number" db:"phone_number"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewStudent contains information needed to provision a new Student.
type NewStudent struct {
	Email              string `json:"email" validate:"required,email"`
	Password           string `json:"password" validate:"required"`
	FullName           string `json:"full_name" validate:"required"`
	RegistrationNumber string `json:"registration_number" validate:"required"`
	Branch             string `json:"branch"`
	Year               int    `json:"year" validate:"required,min=1,max=6"`
	Semester           int    `json:"semester" validate:"required,min=1,max=12"`
	Section            string `json:"section" validate:"required"`
	PhoneNumber        string `json:"phone_number"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.FullName = core.CleanString(ns.FullName)
	ns.RegistrationNumber = core.CleanString(ns.RegistrationNumber)
	ns.Section = strings.ToUpper(core.CleanString(ns.Section))
	ns.PhoneNumber = core.CleanString(ns.PhoneNumber)
	ns.Branch = strings.ToUpper(core.CleanString(ns.Branch))
	if ns.Branch == "" {
		ns.Branch = DefaultBranch
	}
	return validate.Struct(ns)
}
