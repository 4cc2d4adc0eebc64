package slicer

import (
	"fmt"
	"time"

	jitterbug "github.com/lthibault/jitterbug/v2"
	"github.com/pkg/errors"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/firefox"
	"go.uber.org/zap"

	"github.com/smtnkc/ensembl-scraper/internal/config"
)

// MIME classes the browser saves to disk without prompting. Anything else
// would pop a download dialog no one is around to click.
const downloadMIMETypes = "application/octet-stream" +
	",application/excel,application/vnd.ms-excel" +
	",application/pdf,application/x-pdf" +
	",application/x-bzip2" +
	",application/x-gzip,application/gzip"

// Session is one live browser against the Data Slicer page. Every method maps
// to a single UI interaction; the waits are best-effort and never fail a job.
type Session interface {
	Navigate(url string) error
	Fill(f Field, value string) error
	SelectByText(f Field, value string) error
	ChooseRadio(f Field, value string) error
	Click(f Field) error
	AwaitSettled()
	AwaitResultsReady(timeout time.Duration)
	Quit() error
}

// Launcher opens browser sessions. The selenium-backed implementation starts
// one geckodriver process per session so batch rows never share state.
type Launcher interface {
	Launch(job *JobSpec, outDir string) (Session, error)
}

type seleniumLauncher struct {
	cfg *config.Config
	log *zap.SugaredLogger
}

func NewLauncher(cfg *config.Config, log *zap.SugaredLogger) Launcher {
	return &seleniumLauncher{cfg: cfg, log: log}
}

func (l *seleniumLauncher) Launch(job *JobSpec, outDir string) (Session, error) {
	sc := l.cfg.Slicer

	service, err := selenium.NewGeckoDriverService(sc.GeckoDriverPath, sc.GeckoDriverPort)
	if err != nil {
		return nil, errors.Wrapf(err, "starting geckodriver from %s", sc.GeckoDriverPath)
	}

	ff := firefox.Capabilities{
		Binary: sc.FirefoxBinary,
		Prefs: map[string]interface{}{
			"browser.download.folderList":               2,
			"browser.download.manager.showWhenStarting": false,
			"browser.download.dir":                      outDir,
			"browser.helperApps.neverAsk.saveToDisk":    downloadMIMETypes,
			"plugin.disable_full_page_plugin_for_types": downloadMIMETypes,
			"pdfjs.disabled":                            true,
		},
	}
	if job.Headless {
		ff.Args = append(ff.Args, "-headless")
	}

	caps := selenium.Capabilities{"browserName": "firefox"}
	caps.AddFirefox(ff)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d", sc.GeckoDriverPort))
	if err != nil {
		_ = service.Stop()
		return nil, errors.Wrap(err, "opening firefox session")
	}
	if err := wd.SetImplicitWaitTimeout(2 * time.Second); err != nil {
		l.log.Warnf("setting implicit wait: %v", err)
	}

	return &webSession{
		wd:             wd,
		service:        service,
		log:            l.log,
		settle:         sc.SettleDelay,
		spinnerTimeout: sc.SpinnerTimeout,
	}, nil
}

type webSession struct {
	wd             selenium.WebDriver
	service        *selenium.Service
	log            *zap.SugaredLogger
	settle         time.Duration
	spinnerTimeout time.Duration
}

func (s *webSession) Navigate(url string) error {
	if err := s.wd.Get(url); err != nil {
		return errors.Wrapf(err, "navigating to %s", url)
	}
	if title, err := s.wd.Title(); err == nil {
		s.log.Infof("Loaded page: %s", title)
	}
	return nil
}

func (s *webSession) find(f Field, args ...interface{}) (selenium.WebElement, error) {
	xpath, err := Locator(f, args...)
	if err != nil {
		return nil, err
	}
	elem, err := s.wd.FindElement(selenium.ByXPATH, xpath)
	if err != nil {
		return nil, errors.Wrapf(err, "locating %s (%s)", f, xpath)
	}
	return elem, nil
}

func (s *webSession) Fill(f Field, value string) error {
	elem, err := s.find(f)
	if err != nil {
		return err
	}
	if err := elem.SendKeys(value); err != nil {
		return errors.Wrapf(err, "typing into %s", f)
	}
	return nil
}

// SelectByText picks a dropdown option by its exact visible text.
func (s *webSession) SelectByText(f Field, value string) error {
	xpath, err := Locator(f)
	if err != nil {
		return err
	}
	option, err := s.wd.FindElement(selenium.ByXPATH, fmt.Sprintf("%s/option[text()=%q]", xpath, value))
	if err != nil {
		return errors.Wrapf(err, "locating option %q of %s", value, f)
	}
	if err := option.Click(); err != nil {
		return errors.Wrapf(err, "selecting option %q of %s", value, f)
	}
	return nil
}

// ChooseRadio clicks the radio button whose value attribute matches value.
func (s *webSession) ChooseRadio(f Field, value string) error {
	elem, err := s.find(f, value)
	if err != nil {
		return err
	}
	if err := elem.Click(); err != nil {
		return errors.Wrapf(err, "choosing %s=%s", f, value)
	}
	return nil
}

func (s *webSession) Click(f Field) error {
	elem, err := s.find(f)
	if err != nil {
		return err
	}
	if err := elem.Click(); err != nil {
		return errors.Wrapf(err, "clicking %s", f)
	}
	return nil
}

// AwaitSettled waits for the overlay spinner to go invisible, then sleeps a
// short settle delay. A spinner that never clears is logged and ignored.
func (s *webSession) AwaitSettled() {
	xpath, _ := Locator(FieldSpinner)
	err := s.wd.WaitWithTimeoutAndInterval(func(wd selenium.WebDriver) (bool, error) {
		elems, err := wd.FindElements(selenium.ByXPATH, xpath)
		if err != nil {
			return true, nil
		}
		for _, e := range elems {
			if shown, _ := e.IsDisplayed(); shown {
				return false, nil
			}
		}
		return true, nil
	}, s.spinnerTimeout, 500*time.Millisecond)
	if err != nil {
		s.log.Warnf("spinner still visible after %s, proceeding anyway", s.spinnerTimeout)
	}
	time.Sleep(s.settle)
}

// AwaitResultsReady polls until the results link is clickable or the timeout
// elapses. Timing out is not fatal: the follow-on click fails loudly if the
// link truly never appeared.
func (s *webSession) AwaitResultsReady(timeout time.Duration) {
	xpath, _ := Locator(FieldViewResults)
	deadline := time.Now().Add(timeout)
	ticker := jitterbug.New(2*time.Second, &jitterbug.Norm{Stdev: 200 * time.Millisecond})
	defer ticker.Stop()

	for {
		if elem, err := s.wd.FindElement(selenium.ByXPATH, xpath); err == nil {
			shown, _ := elem.IsDisplayed()
			enabled, _ := elem.IsEnabled()
			if shown && enabled {
				return
			}
		}
		if time.Now().After(deadline) {
			s.log.Warnf("results link not clickable after %s, proceeding anyway", timeout)
			return
		}
		<-ticker.C
	}
}

func (s *webSession) Quit() error {
	err := s.wd.Quit()
	if stopErr := s.service.Stop(); err == nil {
		err = stopErr
	}
	return err
}
