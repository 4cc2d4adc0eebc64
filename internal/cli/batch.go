package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/smtnkc/ensembl-scraper/internal/config"
	"github.com/smtnkc/ensembl-scraper/internal/slicer"
)

type BatchOptions struct {
	GlobalOptions
}

func DefaultBatchOptions() *BatchOptions {
	return &BatchOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdBatch() *cobra.Command {
	o := DefaultBatchOptions()
	cmd := &cobra.Command{
		Use:     "batch MANIFEST",
		Short:   "Run every slicing job listed in a CSV or XLSX manifest",
		Example: "batch jobs.csv -o downloads/ -t 300",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *BatchOptions) Run(ctx context.Context, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	logger := o.Logger(cfg)
	defer func() { _ = logger.Sync() }()

	jobs, err := slicer.ReadManifest(args[0], time.Duration(o.Timeout)*time.Second)
	if err != nil {
		logger.Error(err)
		return err
	}
	logger.Infof("Loaded %d jobs from %s", len(jobs), args[0])

	runner := slicer.NewRunner(
		cfg,
		slicer.NewLauncher(cfg, logger),
		slicer.NewFinalizer(o.OutDir, cfg.Slicer.OutputExtension, logger),
		logger,
	)
	if err := runner.RunBatch(ctx, jobs); err != nil {
		logger.Error(err)
		return err
	}

	logger.Info("Completed.")
	return nil
}
