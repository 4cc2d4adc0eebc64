package slicer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/smtnkc/ensembl-scraper/internal/config"
)

// Runner drives jobs end to end: one browser session per job, strictly
// sequential, rename after every download. A failed job aborts the whole
// batch; there is no per-row isolation or retry.
type Runner struct {
	cfg       *config.Config
	launcher  Launcher
	finalizer *Finalizer
	log       *zap.SugaredLogger
}

func NewRunner(cfg *config.Config, launcher Launcher, finalizer *Finalizer, log *zap.SugaredLogger) *Runner {
	return &Runner{
		cfg:       cfg,
		launcher:  launcher,
		finalizer: finalizer,
		log:       log,
	}
}

// Run performs one slicing job. Validation failures return before any browser
// is launched.
func (r *Runner) Run(ctx context.Context, job *JobSpec) error {
	if err := job.Validate(r.cfg.Slicer.JobNamePrefix); err != nil {
		return err
	}

	log := r.log.With("run_id", uuid.NewString(), "job", job.Name)

	log.Info("Opening browser...")
	session, err := r.launcher.Launch(job, r.finalizer.dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Quit(); err != nil {
			log.Warnf("closing browser: %v", err)
		}
	}()

	if err := r.drive(ctx, session, job, log); err != nil {
		return err
	}

	// give the download manager a moment to flush the file to disk
	time.Sleep(r.cfg.Slicer.SettleDelay)

	_, err = r.finalizer.Claim(job.Name)
	return err
}

// RunBatch processes jobs in order, one browser at a time. The first failure
// stops the remaining rows.
func (r *Runner) RunBatch(ctx context.Context, jobs []JobSpec) error {
	for i := range jobs {
		if err := r.Run(ctx, &jobs[i]); err != nil {
			return errors.Wrapf(err, "job %s", jobs[i].Name)
		}
	}
	return nil
}

type step struct {
	name string
	run  func(Session) error
}

// drive replays the form-filling sequence. Each step is followed by a settle
// wait; any element the page no longer serves aborts the job.
func (r *Runner) drive(ctx context.Context, session Session, job *JobSpec, log *zap.SugaredLogger) error {
	steps := []step{
		{"Opening website ensembl data slicer...", func(s Session) error {
			return s.Navigate(r.cfg.Slicer.ToolURL)
		}},
		{"Closing agreement...", func(s Session) error {
			return s.Click(FieldAgreeButton)
		}},
		{"Setting job name...", func(s Session) error {
			return s.Fill(FieldJobName, job.Name)
		}},
		{"Setting file format...", func(s Session) error {
			return s.SelectByText(FieldFileFormat, job.FileFormat)
		}},
		{"Setting region lookup...", func(s Session) error {
			return s.Fill(FieldRegion, job.Region)
		}},
		{"Setting genotype file URL...", func(s Session) error {
			return s.Fill(FieldGenotypeURL, job.GenotypeURL)
		}},
		{"Setting filters...", func(s Session) error {
			return s.ChooseRadio(FieldFilterMode, job.FilterMode)
		}},
		{"Setting sample-population mapping file URL...", func(s Session) error {
			return s.Fill(FieldMappingURL, job.MappingURL)
		}},
		// clicking the masthead dismisses any tooltip still covering the form
		{"", func(s Session) error {
			return s.Click(FieldBanner)
		}},
		{"Setting population...", func(s Session) error {
			return s.SelectByText(FieldPopulations, job.Populations)
		}},
		{"Running...", func(s Session) error {
			return s.Click(FieldRunButton)
		}},
		{"Waiting for the results (In the queue)...", func(s Session) error {
			s.AwaitResultsReady(job.Timeout)
			return nil
		}},
		{"Results are ready...", func(s Session) error {
			return s.Click(FieldViewResults)
		}},
		{"Downloading results...", func(s Session) error {
			return s.Click(FieldDownloadResult)
		}},
	}

	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if st.name != "" {
			log.Info(st.name)
		}
		if err := st.run(session); err != nil {
			return err
		}
		session.AwaitSettled()
	}
	return nil
}
