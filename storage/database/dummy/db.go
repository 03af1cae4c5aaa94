package dummydb

import (
	"sync"

	"github.com/trezcool/darasa/core/student"
)

type (
	DB struct {
		student *studentTable
		account *accountTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*account // keyed by email
	}

	account struct {
		id           string
		email        string
		passwordHash []byte
	}
)

func Open() (*DB, error) {
	db := &DB{
		student: &studentTable{table: make(map[string]*student.Student)},
		account: &accountTable{table: make(map[string]*account)},
	}
	return db, nil
}
