package dummydb

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core/student"
)

type accountProvisioner struct {
	db *accountTable
}

var _ student.Provisioner = (*accountProvisioner)(nil) // interface compliance check

func NewAccountProvisioner(db *DB) student.Provisioner {
	return &accountProvisioner{db: db.account}
}

func (p *accountProvisioner) CreateAccount(_ context.Context, email, password string) (string, error) {
	p.db.Lock()
	defer p.db.Unlock()

	if _, ok := p.db.table[email]; ok {
		return "", student.ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	acc := &account{
		id:           uuid.New().String(),
		email:        email,
		passwordHash: hash,
	}
	p.db.table[email] = acc
	return acc.id, nil
}
