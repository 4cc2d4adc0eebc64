package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smtnkc/ensembl-scraper/internal/config"
	"github.com/smtnkc/ensembl-scraper/internal/slicer"
)

const (
	defaultGenotypeURL = "https://ftp.ensembl.org/pub/data_files/homo_sapiens/GRCh38/variation_genotype/ALL.chr1_GRCh38.genotypes.20170504.vcf.gz"
	defaultMappingURL  = "https://ftp.1000genomes.ebi.ac.uk/vol1/ftp/release/20130502/integrated_call_samples_v3.20130502.ALL.panel"
)

type RunOptions struct {
	GlobalOptions

	JobName     string
	FileFormat  string
	Region      string
	GenotypeURL string
	Filters     string
	MappingURL  string
	Populations string
	Open        bool
}

func DefaultRunOptions() *RunOptions {
	return &RunOptions{
		GlobalOptions: DefaultGlobalOptions(),
		FileFormat:    slicer.FileFormatVCF,
		Region:        "3:146142335-146301179",
		GenotypeURL:   defaultGenotypeURL,
		Filters:       slicer.FilterPopulations,
		MappingURL:    defaultMappingURL,
		Populations:   "CEU",
	}
}

func NewCmdRun() *cobra.Command {
	o := DefaultRunOptions()
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Slice one region out of a remote BAM or VCF file",
		Example: "run -j J1 -r 3:146142335-146301179 -p CEU",
		Args:    cobra.NoArgs,
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

func (o *RunOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.JobName, "jobname", "j", o.JobName, "Name for this job")
	fs.StringVarP(&o.FileFormat, "fileformat", "f", o.FileFormat, "File format (BAM or VCF)")
	fs.StringVarP(&o.Region, "region", "r", o.Region, "Region lookup (chromosome:start-end)")
	fs.StringVarP(&o.GenotypeURL, "genotype", "g", o.GenotypeURL, "Genotype file URL")
	fs.StringVar(&o.Filters, "filters", o.Filters, "Filters (none, individuals, or populations)")
	fs.StringVarP(&o.MappingURL, "mapping", "m", o.MappingURL, "Sample-population mapping file URL")
	fs.StringVarP(&o.Populations, "populations", "p", o.Populations, "Populations")
	fs.BoolVar(&o.Open, "open", o.Open, "Open the browser window instead of running headless")
}

func (o *RunOptions) Run(ctx context.Context, args []string) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	logger := o.Logger(cfg)
	defer func() { _ = logger.Sync() }()

	job := slicer.JobSpec{
		Name:        o.JobName,
		FileFormat:  o.FileFormat,
		Region:      o.Region,
		GenotypeURL: o.GenotypeURL,
		FilterMode:  slicer.NormalizeFilterMode(o.Filters),
		MappingURL:  o.MappingURL,
		Populations: o.Populations,
		Timeout:     time.Duration(o.Timeout) * time.Second,
		Headless:    !o.Open,
	}

	runner := slicer.NewRunner(
		cfg,
		slicer.NewLauncher(cfg, logger),
		slicer.NewFinalizer(o.OutDir, cfg.Slicer.OutputExtension, logger),
		logger,
	)
	if err := runner.Run(ctx, &job); err != nil {
		logger.Error(err)
		return err
	}

	logger.Info("Completed.")
	return nil
}
