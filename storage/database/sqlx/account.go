package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core/student"
)

type accountProvisioner struct {
	db *sqlx.DB
}

var _ student.Provisioner = (*accountProvisioner)(nil) // interface compliance check

func NewAccountProvisioner(db *sqlx.DB) student.Provisioner {
	return &accountProvisioner{db: db}
}

// CreateAccount enforces the password policy, hashes the password and inserts
// the account in one statement; the unique index on email makes duplicate
// rejection deterministic so there is never a partially created account.
func (p *accountProvisioner) CreateAccount(ctx context.Context, email, password string) (string, error) {
	if err := student.CheckPassword(password, email); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}

	id := uuid.New().String()
	query := `INSERT INTO accounts (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	if _, err = p.db.ExecContext(ctx, query, id, email, hash, time.Now().UTC()); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return "", student.ErrEmailExists
		}
		return "", errors.Wrap(err, "inserting account")
	}
	return id, nil
}
