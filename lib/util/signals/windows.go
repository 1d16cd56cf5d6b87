//go:build windows

package signals

import "os"

var notified = []os.Signal{os.Interrupt}

func isReload(os.Signal) bool {
	return false
}
