// Package manifest reads the optional project catalog files under .cairn.
//
// Two catalogs exist. The skill catalog (skills.csv) registers external
// dispatch targets and overrides for built-in ones, so a project can swap
// the scripted reviewer behind a verification gate without rebuilding
// anything. The pack manifest (packs.yaml) lists installed convention packs
// whose documents join the resource search path.
//
// Skill catalog CSV format:
//
//	skill,command,steps,role,mode
//	review,,6,reviewer,scripted
//	review.security,./scripts/security-review.sh,4,reviewer,scripted
//	spike,,0,explorer,freeform
//
// An empty command column means the skill is invoked by name through the run
// subcommand. A steps value of 0 is only meaningful for freeform entries,
// which have no step table.
package manifest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Modes an entry may declare.
const (
	// ModeScripted entries are driven by a step table: the dispatched agent
	// runs the target command and follows its output.
	ModeScripted = "scripted"
	// ModeFreeform entries have no script; the dispatched agent improvises
	// within the constraints the dispatch block carries.
	ModeFreeform = "freeform"
)

// Entry is a single row of the skill catalog.
type Entry struct {
	// Skill is the target name used in dispatches. Dots are allowed
	// ("review.security"); path separators are not.
	Skill string

	// Command is an explicit invocation target, usually a script path.
	// Empty means the skill is invoked by name.
	Command string

	// Steps is the size of the target's step table. Zero for freeform
	// entries.
	Steps int

	// Role is the agent role that normally runs this target.
	Role string

	// Mode is [ModeScripted] or [ModeFreeform].
	Mode string
}

// Target returns what a dispatch invokes: the explicit command when present,
// otherwise the skill name.
func (e *Entry) Target() string {
	if e.Command != "" {
		return e.Command
	}
	return e.Skill
}

// Catalog holds all skill catalog entries in file order.
type Catalog struct {
	Entries []Entry
}

// ReadFromFile reads and parses a skill catalog CSV file.
func ReadFromFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open skill catalog")
	}
	defer f.Close()

	return readFromReader(f)
}

// ReadFromString parses a skill catalog from a CSV string.
// This is useful for testing and for embedding catalog data.
func ReadFromString(data string) (*Catalog, error) {
	return readFromReader(strings.NewReader(data))
}

func readFromReader(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read catalog header")
	}

	colIndex := buildColumnIndex(header)
	if err := validateColumns(colIndex); err != nil {
		return nil, err
	}

	var entries []Entry
	lineNum := 1 // header was line 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read catalog line %d", lineNum)
		}

		entry := Entry{
			Skill:   getField(record, colIndex, "skill"),
			Command: getField(record, colIndex, "command"),
			Role:    getField(record, colIndex, "role"),
			Mode:    getField(record, colIndex, "mode"),
		}

		if entry.Skill == "" {
			return nil, errors.Errorf("catalog line %d: skill name is required", lineNum)
		}
		if strings.ContainsAny(entry.Skill, `/\`) {
			return nil, errors.Errorf("catalog line %d: skill name %q must not contain path separators", lineNum, entry.Skill)
		}

		if raw := getField(record, colIndex, "steps"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return nil, errors.Errorf("catalog line %d: invalid steps value %q", lineNum, raw)
			}
			entry.Steps = n
		}

		switch entry.Mode {
		case "":
			entry.Mode = ModeScripted
		case ModeScripted, ModeFreeform:
		default:
			return nil, errors.Errorf("catalog line %d: unknown mode %q (valid: scripted, freeform)", lineNum, entry.Mode)
		}
		if entry.Mode == ModeScripted && entry.Steps < 1 {
			return nil, errors.Errorf("catalog line %d: scripted entry %q needs a positive steps value", lineNum, entry.Skill)
		}

		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return nil, errors.New("skill catalog contains no entries")
	}

	return &Catalog{Entries: entries}, nil
}

// requiredColumns are the columns that must be present in the catalog CSV.
var requiredColumns = []string{"skill", "steps", "mode"}

func buildColumnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(strings.ToLower(col))] = i
	}
	return index
}

func validateColumns(colIndex map[string]int) error {
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return errors.Errorf("skill catalog missing required column: %s", col)
		}
	}
	return nil
}

func getField(record []string, colIndex map[string]int, column string) string {
	idx, ok := colIndex[column]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// Find returns the first entry registered under the given skill name.
func (c *Catalog) Find(name string) (*Entry, bool) {
	for i := range c.Entries {
		if c.Entries[i].Skill == name {
			return &c.Entries[i], true
		}
	}
	return nil, false
}

// Names returns the unique skill names in file order.
func (c *Catalog) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for _, e := range c.Entries {
		if !seen[e.Skill] {
			seen[e.Skill] = true
			names = append(names, e.Skill)
		}
	}
	return names
}
