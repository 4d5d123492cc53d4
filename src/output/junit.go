package output

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sofmeright/coffeefreight/src/report"
)

// JUnit XML types for CI test reporting.

type JUnitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Time     string          `xml:"time,attr"`
	Cases    []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// BuildJUnit converts lint outcomes into a single-suite JUnit document.
// Each linted file becomes a test case that fails when it has findings.
func BuildJUnit(outcomes []report.Outcome, elapsed time.Duration) JUnitTestSuites {
	suite := JUnitTestSuite{
		Name: "coffeelint",
		Time: fmt.Sprintf("%.3f", elapsed.Seconds()),
	}
	for _, o := range outcomes {
		tc := JUnitTestCase{
			Name:      o.Path + " should pass coffeelint",
			Classname: "coffeelint." + filepath.ToSlash(filepath.Dir(o.Path)),
			Time:      "0.000",
		}
		if !o.Passed() {
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%d finding(s) in %s", o.Findings, o.Path),
				Type:    "coffeelint",
				Body:    o.Report,
			}
			suite.Failures++
		}
		suite.Cases = append(suite.Cases, tc)
		suite.Tests++
	}

	return JUnitTestSuites{
		Name:     "coffeefreight",
		Tests:    suite.Tests,
		Failures: suite.Failures,
		Time:     suite.Time,
		Suites:   []JUnitTestSuite{suite},
	}
}

// WriteJUnit writes lint outcomes as dir/coffeelint.xml.
func WriteJUnit(dir string, outcomes []report.Outcome, elapsed time.Duration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	path := filepath.Join(dir, "coffeelint.xml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(BuildJUnit(outcomes, elapsed)); err != nil {
		return fmt.Errorf("encoding junit xml: %w", err)
	}
	_, err = f.WriteString("\n")
	return err
}
