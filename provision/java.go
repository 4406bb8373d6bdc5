package provision

import (
	"context"
	"fmt"
	"os/exec"

	log "github.com/sirupsen/logrus"
)

// PathJavaProvider resolves the runtime executable from a forced path
// or from PATH. It never installs a runtime; callers needing automatic
// provisioning plug in their own JavaProvider.
type PathJavaProvider struct {
	ForcedPath string
}

func (p PathJavaProvider) Locate(_ context.Context, major int) (string, error) {
	if p.ForcedPath != "" {
		return p.ForcedPath, nil
	}
	java, err := exec.LookPath("java")
	if err != nil {
		return "", fmt.Errorf("%w: need major version %d: %v", ErrJavaUnavailable, major, err)
	}
	log.Debugf("Using %s for requested java %d", java, major)
	return java, nil
}
