package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/darasa/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		students = append(students, *s)
	}
	return students
}

func (repo *studentRepository) CreateStudent(_ context.Context, stu student.Student) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, s := range repo.db.table {
		if s.RegistrationNumber == stu.RegistrationNumber {
			return student.ErrRegNumExists
		}
	}
	repo.db.table[stu.ID] = &stu
	return nil
}

func (repo *studentRepository) QueryAllStudents(_ context.Context) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) FilterStudents(_ context.Context, search string) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search = strings.ToLower(search)
	var filtered []student.Student
	for _, stu := range repo.query() {
		if strings.Contains(strings.ToLower(stu.FullName), search) ||
			strings.Contains(strings.ToLower(stu.RegistrationNumber), search) ||
			strings.Contains(strings.ToLower(stu.Branch), search) {
			filtered = append(filtered, stu)
		}
	}
	return filtered, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if stu, ok := repo.db.table[id]; ok {
		return *stu, nil
	}
	return student.Student{}, student.ErrNotFound
}
