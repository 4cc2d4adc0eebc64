package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/smtnkc/ensembl-scraper/internal/config"
	"github.com/smtnkc/ensembl-scraper/pkg/log"
)

type GlobalOptions struct {
	OutDir  string
	Timeout int
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		OutDir:  "downloads/",
		Timeout: 300,
	}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.OutDir, "outdir", "o", o.OutDir, "Output directory")
	fs.IntVarP(&o.Timeout, "timeout", "t", o.Timeout, "Action timeout in seconds")
}

// Complete resolves the output directory, creating it if needed. Failure to
// create it is a configuration error reported before any browser starts.
func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(o.OutDir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", o.OutDir, err)
	}
	abs, err := filepath.Abs(o.OutDir)
	if err != nil {
		return fmt.Errorf("resolving output directory %s: %w", o.OutDir, err)
	}
	o.OutDir = abs
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", o.Timeout)
	}
	return nil
}

// Logger builds the injected logging collaborator every command shares.
func (o *GlobalOptions) Logger(cfg *config.Config) *zap.SugaredLogger {
	return log.InitLog(log.Level(cfg.Slicer.LogLevel)).Sugar()
}
