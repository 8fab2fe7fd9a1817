//go:build windows

package utils

import (
	"math"
	"os"

	"golang.org/x/sys/windows"
)

func tryLock(file *os.File) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(windows.Handle(file.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0, math.MaxUint32, math.MaxUint32, ol)
}

func unlock(file *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(file.Fd()), 0, math.MaxUint32, math.MaxUint32, ol)
}
