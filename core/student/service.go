package student

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core"
)

type (
	ServiceInterface interface {
		Create(ctx context.Context, ns NewStudent) (Student, error)
		BulkImport(ctx context.Context, rows []Row) (*BatchReport, error)
		Query(ctx context.Context, search string) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
	}

	Service struct {
		repo        Repository
		provisioner Provisioner
		mailSvc     core.EmailService
		conf        *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, provisioner Provisioner, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:        repo,
		provisioner: provisioner,
		mailSvc:     mailSvc,
		conf:        conf,
	}
}

// Create provisions an account then persists the profile for a single,
// pre-validated NewStudent. As with bulk imports, a persistence failure
// leaves the provisioned account in place for manual reconciliation.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	id, err := svc.provisioner.CreateAccount(ctx, ns.Email, ns.Password)
	if err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	stu := Student{
		ID:                 id,
		Email:              ns.Email,
		FullName:           ns.FullName,
		RegistrationNumber: ns.RegistrationNumber,
		Branch:             ns.Branch,
		Year:               ns.Year,
		Semester:           ns.Semester,
		Section:            ns.Section,
		PhoneNumber:        ns.PhoneNumber,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err = svc.repo.CreateStudent(ctx, stu); err != nil {
		return Student{}, err
	}
	return stu, nil
}

func (svc *Service) Query(ctx context.Context, search string) ([]Student, error) {
	search = core.CleanString(search)
	if search == "" {
		return svc.repo.QueryAllStudents(ctx)
	}
	return svc.repo.FilterStudents(ctx, search)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}
