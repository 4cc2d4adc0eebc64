package slicer

import "fmt"

// Field names a form element by what it does rather than where it lives in the
// page. All knowledge of the Data Slicer's markup is concentrated in the
// locator table below, so a site redesign means editing one map, not the
// workflow.
type Field string

const (
	FieldAgreeButton    Field = "agree-button"
	FieldJobName        Field = "job-name"
	FieldFileFormat     Field = "file-format"
	FieldRegion         Field = "region-lookup"
	FieldGenotypeURL    Field = "genotype-url"
	FieldFilterMode     Field = "filter-mode"
	FieldMappingURL     Field = "mapping-url"
	FieldBanner         Field = "masthead-banner"
	FieldPopulations    Field = "populations"
	FieldRunButton      Field = "run-button"
	FieldSpinner        Field = "overlay-spinner"
	FieldViewResults    Field = "view-results"
	FieldDownloadResult Field = "download-results"
)

// locators holds the XPath for each logical field. These are tied to the
// markup the site serves today and break silently when it changes.
var locators = map[Field]string{
	FieldAgreeButton:    "//a[@id='gdpr-agree']",
	FieldJobName:        "//input[@id='BgjfIUsr_1']",
	FieldFileFormat:     "//select[@id='BgjfIUsr_5']",
	FieldRegion:         "//input[@id='BgjfIUsr_6']",
	FieldGenotypeURL:    "//input[@id='BgjfIUsr_10']",
	FieldFilterMode:     "//input[@value=%q]",
	FieldMappingURL:     "//input[@id='BgjfIUsr_12']",
	FieldBanner:         "//div[@id='masthead']",
	FieldPopulations:    "//select[@id='BgjfIUsr_16']",
	FieldRunButton:      "//input[@class='run_button fbutton']",
	FieldSpinner:        "//div[@class='overlay-spinner spinner']",
	FieldViewResults:    "//a[text()='[View results]']",
	FieldDownloadResult: "//a[text()='Download results file']",
}

// Locator resolves a logical field to its XPath. Args fill any placeholders,
// as with the filter-mode radio group which is addressed by value attribute.
func Locator(f Field, args ...interface{}) (string, error) {
	xpath, ok := locators[f]
	if !ok {
		return "", fmt.Errorf("no locator registered for field %q", f)
	}
	if len(args) > 0 {
		xpath = fmt.Sprintf(xpath, args...)
	}
	return xpath, nil
}
