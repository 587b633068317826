package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/progcdc/internal/program"
	"github.com/roach88/progcdc/internal/source"
)

// Scenario defines a conformance test scenario: a sequence of source
// snapshots and assertions over the resulting change logs.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RepostThreshold overrides the default delete/post coalescing window.
	RepostThreshold string `yaml:"repost_threshold,omitempty"`

	// ArchiveCodes overrides the default transaction code mapping.
	ArchiveCodes *source.ArchiveCodes `yaml:"archive_codes,omitempty"`

	// Passes are run in order, one snapshot each.
	Passes []Pass `yaml:"passes"`

	// Assertions validate the final change logs.
	Assertions []Assertion `yaml:"assertions"`
}

// Pass is the content of the source tables for one snapshot pass.
type Pass struct {
	Programs []ProgramRow `yaml:"programs"`
	Archive  []ArchiveRow `yaml:"archive,omitempty"`

	// ExpectError, if set, requires the pass to fail with an error whose
	// text contains this substring.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// ProgramRow is one active program with its sheet and parts.
// Values are raw source text so malformed data can be expressed.
type ProgramRow struct {
	Name     string    `yaml:"name"`
	Machine  string    `yaml:"machine"`
	PostedAt time.Time `yaml:"posted_at"`
	Sheet    SheetRow  `yaml:"sheet"`
	Parts    []PartRow `yaml:"parts,omitempty"`
}

// SheetRow is a Stock row.
type SheetRow struct {
	Name     string `yaml:"name"`
	Grade    string `yaml:"grade"`
	Material string `yaml:"material"`
	Heat     string `yaml:"heat"`
	PO       string `yaml:"po"`
}

// PartRow is a PIP row.
type PartRow struct {
	Name      string `yaml:"name"`
	WorkOrder string `yaml:"work_order"`
	Qty       int    `yaml:"qty"`
}

// ArchiveRow is a ProgArchive row.
type ArchiveRow struct {
	Program string    `yaml:"program"`
	Code    string    `yaml:"code"`
	At      time.Time `yaml:"at"`
}

// Assertion validates the final change logs or a pass report.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Program is the subject of log_kinds, final_status, final_parts, no_log.
	Program program.ProgramID `yaml:"program,omitempty"`

	// Kinds is the expected change kind sequence (log_kinds).
	Kinds []program.ChangeKind `yaml:"kinds,omitempty"`

	// Status is the expected folded status (final_status).
	Status program.StatusKind `yaml:"status,omitempty"`

	// Parts is the expected folded part set (final_parts).
	Parts []PartRow `yaml:"parts,omitempty"`

	// Pass is the zero-based pass index (report).
	Pass int `yaml:"pass,omitempty"`

	// Touched and Changes are the expected report counters (report).
	Touched *int `yaml:"touched,omitempty"`
	Changes *int `yaml:"changes,omitempty"`
}

// Assertion type constants.
const (
	AssertLogKinds    = "log_kinds"
	AssertFinalStatus = "final_status"
	AssertFinalParts  = "final_parts"
	AssertNoLog       = "no_log"
	AssertReport      = "report"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// threshold returns the scenario's repost threshold.
func (s *Scenario) threshold() (time.Duration, error) {
	if s.RepostThreshold == "" {
		return program.DefaultRepostThreshold, nil
	}
	return time.ParseDuration(s.RepostThreshold)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Passes) == 0 {
		return fmt.Errorf("passes list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if d, err := s.threshold(); err != nil || d <= 0 {
		return fmt.Errorf("repost_threshold %q must be a positive duration", s.RepostThreshold)
	}

	for i, pass := range s.Passes {
		for j, row := range pass.Programs {
			if row.Name == "" {
				return fmt.Errorf("passes[%d].programs[%d]: name is required", i, j)
			}
			if row.Sheet.Name == "" {
				return fmt.Errorf("passes[%d].programs[%d]: sheet.name is required", i, j)
			}
			if row.PostedAt.IsZero() {
				return fmt.Errorf("passes[%d].programs[%d]: posted_at is required", i, j)
			}
		}
		for j, row := range pass.Archive {
			if row.Program == "" || row.Code == "" || row.At.IsZero() {
				return fmt.Errorf("passes[%d].archive[%d]: program, code and at are required", i, j)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Passes)); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, passes int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertLogKinds:
		if a.Program == 0 || len(a.Kinds) == 0 {
			return fmt.Errorf("assertions[%d]: program and kinds are required for log_kinds", index)
		}
	case AssertFinalStatus:
		if a.Program == 0 || a.Status == "" {
			return fmt.Errorf("assertions[%d]: program and status are required for final_status", index)
		}
	case AssertFinalParts:
		if a.Program == 0 {
			return fmt.Errorf("assertions[%d]: program is required for final_parts", index)
		}
	case AssertNoLog:
		if a.Program == 0 {
			return fmt.Errorf("assertions[%d]: program is required for no_log", index)
		}
	case AssertReport:
		if a.Pass < 0 || a.Pass >= passes {
			return fmt.Errorf("assertions[%d]: pass %d out of range", index, a.Pass)
		}
		if a.Touched == nil && a.Changes == nil {
			return fmt.Errorf("assertions[%d]: touched or changes is required for report", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
