package repository

import (
	"errors"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolationCode      = "23505"
	sqliteConstraintCode       = 19
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUniqueCode = 2067
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqliteConstraintCode || code == sqliteConstraintUniqueCode || code == sqliteConstraintPrimaryKey
	}
	return false
}

// dbOrTx returns tx when the caller is inside a unit of work.
func dbOrTx(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
