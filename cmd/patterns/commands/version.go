package commands

import (
	"fmt"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/version"
)

// VersionCmd prints the binary's build metadata.
type VersionCmd struct{}

func (v *VersionCmd) Run(_ *Global, _ *CLI) error {
	fmt.Printf("patterns %s (commit %s, built %s)\n", version.Version, version.GitCommit, version.BuildTime)
	return nil
}
