//go:build windows

package platform

import "os"

// Windows does not reliably deliver SIGTERM to console apps
var stopSignals = []os.Signal{os.Interrupt}
