package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Slicer *slicerConfig
}

type slicerConfig struct {
	ToolURL         string        `envconfig:"DATA_SLICER_TOOL_URL" default:"https://www.ensembl.org/Homo_sapiens/Tools/DataSlicer?db=core;expand_form=true"`
	GeckoDriverPath string        `envconfig:"DATA_SLICER_GECKODRIVER" default:"./geckodriver"`
	GeckoDriverPort int           `envconfig:"DATA_SLICER_GECKODRIVER_PORT" default:"4444"`
	FirefoxBinary   string        `envconfig:"DATA_SLICER_FIREFOX_BINARY" default:""`
	SettleDelay     time.Duration `envconfig:"DATA_SLICER_SETTLE_DELAY" default:"1s"`
	SpinnerTimeout  time.Duration `envconfig:"DATA_SLICER_SPINNER_TIMEOUT" default:"30s"`
	OutputExtension string        `envconfig:"DATA_SLICER_OUTPUT_EXTENSION" default:"vcf.gz"`
	JobNamePrefix   string        `envconfig:"DATA_SLICER_JOB_PREFIX" default:"J"`
	LogLevel        string        `envconfig:"DATA_SLICER_LOG_LEVEL" default:"info"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}
