package db

import (
	"errors"
	"regexp"

	"github.com/go-sql-driver/mysql"
)

const mysqlDupEntry = 1062

var dupKeyRegexp = regexp.MustCompile(`for key '([^']+)'`)

// ErrDuplicate is returned by stores without a MySQL backend for unique key violations.
var ErrDuplicate = errors.New("duplicate entry")

func IsDupKeyErr(err error) bool {
	if errors.Is(err, ErrDuplicate) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry
}

// GetDupKey returns the violated key name, or "" when err is not a MySQL duplicate error.
func GetDupKey(err error) string {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlDupEntry {
		return ""
	}
	match := dupKeyRegexp.FindStringSubmatch(mysqlErr.Message)
	if match == nil {
		return ""
	}
	return match[1]
}
