package slicer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smtnkc/ensembl-scraper/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.New()
	require.NoError(t, err)
	cfg.Slicer.SettleDelay = 0
	cfg.Slicer.JobNamePrefix = "J"
	cfg.Slicer.OutputExtension = "vcf.gz"
	cfg.Slicer.ToolURL = "https://slicer.test/form"
	return cfg
}

type fakeSession struct {
	launcher *fakeLauncher
	outDir   string
	failOn   Field
	quit     bool
}

func (s *fakeSession) record(op string) { s.launcher.ops = append(s.launcher.ops, op) }

func (s *fakeSession) fieldErr(f Field) error {
	if s.failOn != "" && s.failOn == f {
		return errors.Errorf("element %s not found", f)
	}
	return nil
}

func (s *fakeSession) Navigate(url string) error {
	s.record("navigate " + url)
	return nil
}

func (s *fakeSession) Fill(f Field, value string) error {
	s.record(fmt.Sprintf("fill %s=%s", f, value))
	return s.fieldErr(f)
}

func (s *fakeSession) SelectByText(f Field, value string) error {
	s.record(fmt.Sprintf("select %s=%s", f, value))
	return s.fieldErr(f)
}

func (s *fakeSession) ChooseRadio(f Field, value string) error {
	s.record(fmt.Sprintf("radio %s=%s", f, value))
	return s.fieldErr(f)
}

func (s *fakeSession) Click(f Field) error {
	s.record("click " + string(f))
	if err := s.fieldErr(f); err != nil {
		return err
	}
	if f == FieldDownloadResult {
		// simulate the download manager dropping a file into the directory
		s.launcher.downloads++
		name := filepath.Join(s.outDir, fmt.Sprintf("slice-%d.tmp", s.launcher.downloads))
		if err := os.WriteFile(name, []byte("data"), 0644); err != nil {
			return err
		}
		now := time.Now().Add(time.Duration(s.launcher.downloads) * time.Second)
		return os.Chtimes(name, now, now)
	}
	return nil
}

func (s *fakeSession) AwaitSettled() { s.record("settle") }

func (s *fakeSession) AwaitResultsReady(timeout time.Duration) { s.record("await-results") }

func (s *fakeSession) Quit() error {
	s.quit = true
	return nil
}

type fakeLauncher struct {
	outDir    string
	failOn    Field
	launches  int
	downloads int
	ops       []string
	sessions  []*fakeSession
}

func (l *fakeLauncher) Launch(job *JobSpec, outDir string) (Session, error) {
	l.launches++
	s := &fakeSession{launcher: l, outDir: outDir, failOn: l.failOn}
	l.sessions = append(l.sessions, s)
	return s, nil
}

func newTestRunner(t *testing.T, outDir string, launcher *fakeLauncher) *Runner {
	t.Helper()
	cfg := testConfig(t)
	log := zap.NewNop().Sugar()
	return NewRunner(cfg, launcher, NewFinalizer(outDir, cfg.Slicer.OutputExtension, log), log)
}

func TestRunnerProducesRenamedDownload(t *testing.T) {
	outDir := t.TempDir()
	launcher := &fakeLauncher{outDir: outDir}
	runner := newTestRunner(t, outDir, launcher)

	job := validJob()
	require.NoError(t, runner.Run(context.Background(), &job))

	assert.Equal(t, 1, launcher.launches)
	assert.True(t, launcher.sessions[0].quit, "browser must be closed after the job")

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "J1.vcf.gz", entries[0].Name())
}

func TestRunnerStepOrder(t *testing.T) {
	outDir := t.TempDir()
	launcher := &fakeLauncher{outDir: outDir}
	runner := newTestRunner(t, outDir, launcher)

	job := validJob()
	require.NoError(t, runner.Run(context.Background(), &job))

	var actions []string
	for _, op := range launcher.ops {
		if op != "settle" {
			actions = append(actions, op)
		}
	}
	assert.Equal(t, []string{
		"navigate https://slicer.test/form",
		"click " + string(FieldAgreeButton),
		"fill job-name=J1",
		"select file-format=VCF",
		"fill region-lookup=3:146142335-146301179",
		"fill genotype-url=" + job.GenotypeURL,
		"radio filter-mode=populations",
		"fill mapping-url=" + job.MappingURL,
		"click " + string(FieldBanner),
		"select populations=CEU",
		"click " + string(FieldRunButton),
		"await-results",
		"click " + string(FieldViewResults),
		"click " + string(FieldDownloadResult),
	}, actions)
}

func TestRunnerRejectsInvalidJobBeforeLaunch(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*JobSpec)
	}{
		{"empty field", func(j *JobSpec) { j.Region = "" }},
		{"bad prefix", func(j *JobSpec) { j.Name = "X1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			launcher := &fakeLauncher{}
			runner := newTestRunner(t, t.TempDir(), launcher)

			job := validJob()
			tt.mutate(&job)
			assert.Error(t, runner.Run(context.Background(), &job))
			assert.Zero(t, launcher.launches, "no browser may start for an invalid job")
		})
	}
}

func TestRunnerClosesBrowserOnAutomationError(t *testing.T) {
	outDir := t.TempDir()
	launcher := &fakeLauncher{outDir: outDir, failOn: FieldViewResults}
	runner := newTestRunner(t, outDir, launcher)

	job := validJob()
	err := runner.Run(context.Background(), &job)
	assert.ErrorContains(t, err, "view-results")
	assert.True(t, launcher.sessions[0].quit, "browser must be closed even on failure")

	entries, readErr := os.ReadDir(outDir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunnerBatchRenamesEachRowInOrder(t *testing.T) {
	outDir := t.TempDir()
	launcher := &fakeLauncher{outDir: outDir}
	runner := newTestRunner(t, outDir, launcher)

	j1 := validJob()
	j2 := validJob()
	j2.Name = "J2"
	require.NoError(t, runner.RunBatch(context.Background(), []JobSpec{j1, j2}))

	assert.Equal(t, 2, launcher.launches)
	assert.FileExists(t, filepath.Join(outDir, "J1.vcf.gz"))
	assert.FileExists(t, filepath.Join(outDir, "J2.vcf.gz"))
}

func TestRunnerBatchStopsOnFirstFailure(t *testing.T) {
	launcher := &fakeLauncher{}
	runner := newTestRunner(t, t.TempDir(), launcher)

	bad := validJob()
	bad.FileFormat = "CRAM"
	good := validJob()
	err := runner.RunBatch(context.Background(), []JobSpec{bad, good})
	assert.ErrorContains(t, err, "job J1")
	assert.Zero(t, launcher.launches, "remaining rows must not run after a failure")
}

func TestRunnerHonorsContextCancellation(t *testing.T) {
	launcher := &fakeLauncher{}
	runner := newTestRunner(t, t.TempDir(), launcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := validJob()
	assert.ErrorIs(t, runner.Run(ctx, &job), context.Canceled)
}
