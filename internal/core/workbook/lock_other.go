//go:build !windows

package workbook

func isLockViolation(err error) bool { return false }
