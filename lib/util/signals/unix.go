//go:build !windows

package signals

import (
	"os"
	"syscall"
)

var notified = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP}

func isReload(sig os.Signal) bool {
	return sig == syscall.SIGHUP
}
