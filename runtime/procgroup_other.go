//go:build !unix

package runtime

import "os/exec"

// setProcessGroup is a no-op where process groups are unavailable; WaitDelay
// still bounds how long a cancelled command can hold the run.
func setProcessGroup(*exec.Cmd) {}
