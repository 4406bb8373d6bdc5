package provision

import (
	"fmt"
	"os/exec"

	log "github.com/sirupsen/logrus"

	"github.com/Strange-Account/go-mc-launcher/launch"
)

// ExecSpawner starts the game process and detaches from it. Spawn
// failure is reported as a single error; once the process is running
// its lifetime is its own.
type ExecSpawner struct{}

func (ExecSpawner) Spawn(inv *launch.Invocation) error {
	cmd := exec.Command(inv.Executable, inv.Argv...)
	cmd.Dir = inv.Dir

	log.Debug(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn %s: %w", inv.Executable, err)
	}
	log.Infof("Started %s (pid %d)", inv.Executable, cmd.Process.Pid)
	return cmd.Process.Release()
}
