//go:build !linux

package interrupt

import (
	"os"
	"os/exec"

	"github.com/kardianos/osext"
)

// Restart launches a fresh invocation of the same binary and exits. Exec
// style process replacement is not portable off linux.
func Restart() {
	log.D.Ln("restarting")
	file, e := osext.Executable()
	if e != nil {
		log.E.Ln(e)
		return
	}
	cmd := exec.Command(file, os.Args[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if e = cmd.Start(); e != nil {
		log.F.Ln(e)
		return
	}
	os.Exit(0)
}
