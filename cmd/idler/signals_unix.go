//go:build !windows

package main

import (
	"os"
	"syscall"
)

// getSignalsForPlatform lists the signals the idler listens for. SIGTSTP
// is logged and ignored so a stray ctrl+z does not freeze the frame loop.
func getSignalsForPlatform() []os.Signal {
	return []os.Signal{
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGHUP,
		syscall.SIGTSTP,
	}
}

func isSIGTSTPForPlatform(sig os.Signal) bool {
	return sig == syscall.SIGTSTP
}
