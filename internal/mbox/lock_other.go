//go:build !darwin && !linux

package mbox

import "os"

// Advisory locking is best-effort; on platforms without flock the writer
// proceeds unlocked.
func lockFile(_ *os.File) error { return nil }

func unlockFile(_ *os.File) error { return nil }
