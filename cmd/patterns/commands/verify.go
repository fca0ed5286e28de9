package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ricardoprins-paqt/vue-design-patterns/internal/manifest"
	"github.com/ricardoprins-paqt/vue-design-patterns/internal/verify"
)

// VerifyCmd checks every external link in the rendered site.
type VerifyCmd struct {
	SiteDir string `help:"Rendered site directory (defaults to the manifest output dir)"`
	JSON    bool   `help:"Print the full report as JSON"`
}

func (v *VerifyCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m, err := manifest.Load(root.Manifest)
	if err != nil {
		return err
	}

	siteDir := v.SiteDir
	if siteDir == "" {
		siteDir = resolveAgainstManifest(root.Manifest, m.Build.OutputDir)
	}
	if info, err := os.Stat(siteDir); err != nil || !info.IsDir() {
		return fmt.Errorf("site directory %s not found, run a build first", siteDir)
	}

	svc, err := verify.NewService(m.Verify, nil, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = svc.Close()
	}()

	report, err := svc.Run(ctx, siteDir)
	if err != nil {
		return err
	}

	if v.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Printf("checked %d links across %d pages in %s (%d cached, %d skipped)\n",
			report.Checked, report.Pages, report.Duration.Round(time.Millisecond), report.Cached, report.Skipped)
		for _, broken := range report.Broken {
			if broken.Error != "" {
				fmt.Printf("  broken: %s (%s)\n", broken.URL, broken.Error)
			} else {
				fmt.Printf("  broken: %s (status %d)\n", broken.URL, broken.Status)
			}
			for _, page := range broken.Pages {
				fmt.Printf("    referenced by %s\n", page)
			}
		}
	}

	if len(report.Broken) > 0 {
		return fmt.Errorf("%d broken links found", len(report.Broken))
	}
	return nil
}
