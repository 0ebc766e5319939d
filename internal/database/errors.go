// errors.go
//
// Content service and admin tooling of a church website
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of chapel-cms.
// chapel-cms is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// chapel-cms is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with chapel-cms.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	mssql "github.com/microsoft/go-mssqldb"
	"gorm.io/gorm"
)

// Kind classifies store failures so callers branch on kind instead of message text
type Kind string

const (
	KindConstraint Kind = "constraint-violation"
	KindNotFound   Kind = "not-found"
	KindPermission Kind = "permission-denied"
	KindTransient  Kind = "transient"
	KindValidation Kind = "validation"
	KindUnknown    Kind = "unknown"
)

// Error is the only error type returned by the store boundary
type Error struct {
	Kind     Kind
	Op       string
	Resource string
	Err      error
}

func (e *Error) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message is the underlying store message, shown to the operator verbatim
func (e *Error) Message() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return e.Err.Error()
}

// KindOf returns the kind of a store error, KindUnknown for anything else
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is a store error of kind k
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// NewError builds a store error with an explicit kind
func NewError(kind Kind, op, resource string, err error) *Error {
	return &Error{Kind: kind, Op: op, Resource: resource, Err: err}
}

// Classify wraps a driver or GORM error into a store error.
// Errors already classified pass through unchanged.
func Classify(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: classify(err), Op: op, Resource: resource, Err: err}
}

// sqliteCoder matches the error types of the modernc-derived sqlite drivers
type sqliteCoder interface {
	Code() int
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return KindConstraint
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), errors.Is(err, driver.ErrBadConn):
		return KindTransient
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return postgresKind(pgErr.Code)
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return mysqlKind(myErr.Number)
	}

	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return sqlserverKind(msErr.Number)
	}

	var liteErr sqliteCoder
	if errors.As(err, &liteErr) {
		return sqliteKind(liteErr.Code())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindTransient
	}

	return KindUnknown
}

// postgresKind maps SQLSTATE codes
func postgresKind(code string) Kind {
	switch {
	case strings.HasPrefix(code, "23"):
		return KindConstraint
	case code == "42501", strings.HasPrefix(code, "28"):
		return KindPermission
	case code == "40001", code == "40P01", code == "57P01",
		strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"):
		return KindTransient
	}
	return KindUnknown
}

func mysqlKind(number uint16) Kind {
	switch number {
	case 1062, 1048, 1216, 1217, 1451, 1452, 3819:
		return KindConstraint
	case 1044, 1045, 1142, 1143:
		return KindPermission
	case 1040, 1205, 1213:
		return KindTransient
	}
	return KindUnknown
}

func sqlserverKind(number int32) Kind {
	switch number {
	case 2627, 2601, 547, 515:
		return KindConstraint
	case 229, 230, 262:
		return KindPermission
	case 1205, 40501, 40613:
		return KindTransient
	}
	return KindUnknown
}

// sqliteKind uses the primary result code (low byte of the extended code)
func sqliteKind(code int) Kind {
	switch code & 0xff {
	case 19: // SQLITE_CONSTRAINT
		return KindConstraint
	case 3, 23: // SQLITE_PERM, SQLITE_AUTH
		return KindPermission
	case 5, 6: // SQLITE_BUSY, SQLITE_LOCKED
		return KindTransient
	}
	return KindUnknown
}
