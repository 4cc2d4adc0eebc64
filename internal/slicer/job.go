package slicer

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/thoas/go-funk"
)

const (
	FileFormatBAM = "BAM"
	FileFormatVCF = "VCF"

	// FilterNone is the literal value attribute the site uses for the
	// "no filters" radio button.
	FilterNone        = "null"
	FilterIndividuals = "individuals"
	FilterPopulations = "populations"
)

var (
	fileFormats = []string{FileFormatBAM, FileFormatVCF}
	filterModes = []string{FilterNone, FilterIndividuals, FilterPopulations}
)

// JobSpec describes a single slicing request against the Data Slicer form.
// It is built from CLI flags or one manifest row and consumed exactly once.
type JobSpec struct {
	Name        string        `validate:"required"`
	FileFormat  string        `validate:"required"`
	Region      string        `validate:"required"`
	GenotypeURL string        `validate:"required,url"`
	FilterMode  string        `validate:"required"`
	MappingURL  string        `validate:"required,url"`
	Populations string        `validate:"required"`
	Timeout     time.Duration `validate:"required,gt=0"`
	Headless    bool
}

var validate = validator.New()

// Validate checks every required field plus the business rules that gate a
// browser launch: the job-name prefix convention and the enum fields.
func (j *JobSpec) Validate(namePrefix string) error {
	if err := validate.Struct(j); err != nil {
		return fmt.Errorf("invalid job spec: %w", err)
	}
	if namePrefix != "" && !strings.HasPrefix(j.Name, namePrefix) {
		return fmt.Errorf("job name %q must start with %q", j.Name, namePrefix)
	}
	if !funk.ContainsString(fileFormats, j.FileFormat) {
		return fmt.Errorf("unsupported file format %q, must be one of %s", j.FileFormat, strings.Join(fileFormats, ", "))
	}
	if !funk.ContainsString(filterModes, j.FilterMode) {
		return fmt.Errorf("unsupported filter mode %q, must be one of %s", j.FilterMode, strings.Join(filterModes, ", "))
	}
	return nil
}

// NormalizeFilterMode maps user-facing filter names onto the value attributes
// of the form's radio buttons. The site spells "no filters" as "null".
func NormalizeFilterMode(mode string) string {
	if strings.EqualFold(mode, "none") {
		return FilterNone
	}
	return strings.ToLower(mode)
}
