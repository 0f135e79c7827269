package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
	lockRetryTimes          = 3
)

// isLockConflict 并发 upsert 同一唯一键时 InnoDB 可能判定死锁，整条语句可安全重放
func isLockConflict(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDeadlock || mysqlErr.Number == mysqlErrLockWaitTimeout
	}
	return false
}

// retryOnLockConflict 只重放锁冲突，其余错误原样返回
func retryOnLockConflict(fn func() error) error {
	var err error
	for range lockRetryTimes {
		if err = fn(); err == nil || !isLockConflict(err) {
			return err
		}
	}
	return err
}
