//go:build windows

package workbook

import (
	"errors"
	"syscall"
)

// Excel holds an open workbook with a share mode that makes other writers fail
// with one of these.
const (
	errSharingViolation syscall.Errno = 32 // ERROR_SHARING_VIOLATION
	errLockViolation    syscall.Errno = 33 // ERROR_LOCK_VIOLATION
)

func isLockViolation(err error) bool {
	return errors.Is(err, errSharingViolation) || errors.Is(err, errLockViolation)
}
