package orchestrator

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/hako/durafmt"
	"github.com/olekukonko/tablewriter"

	"github.com/ekaya-inc/heritage-importer/pkg/importers"
)

// Run is the outcome of one registered importer.
type Run struct {
	Key     string
	Name    string
	Skipped bool // not selected
	Result  importers.Result
	Elapsed time.Duration
}

// Totals are summed counts.
type Totals struct {
	Imported int
	Skipped  int
	Errors   int
	Warnings int
}

func (t *Totals) add(r importers.Result) {
	t.Imported += r.Imported
	t.Skipped += r.Skipped
	t.Errors += len(r.Errors)
	t.Warnings += len(r.Warnings)
}

// PhaseSummary aggregates the runs of one phase.
type PhaseSummary struct {
	Phase   importers.Phase
	Runs    []Run
	Totals  Totals
	Elapsed time.Duration
}

func (p *PhaseSummary) add(run Run) {
	p.Runs = append(p.Runs, run)
	if run.Skipped {
		return
	}
	p.Totals.add(run.Result)
	p.Elapsed += run.Elapsed
}

// Ran reports whether any importer of the phase was selected.
func (p *PhaseSummary) Ran() bool {
	for _, r := range p.Runs {
		if !r.Skipped {
			return true
		}
	}
	return false
}

// Summary is the outcome of a whole run, by phase in registry order.
type Summary struct {
	Phases  []*PhaseSummary
	Elapsed time.Duration
}

func newSummary() *Summary {
	return &Summary{}
}

func (s *Summary) phase(p importers.Phase) *PhaseSummary {
	for _, ps := range s.Phases {
		if ps.Phase == p {
			return ps
		}
	}
	ps := &PhaseSummary{Phase: p}
	s.Phases = append(s.Phases, ps)
	return ps
}

// Totals sums every phase.
func (s *Summary) Totals() Totals {
	var t Totals
	for _, p := range s.Phases {
		t.Imported += p.Totals.Imported
		t.Skipped += p.Totals.Skipped
		t.Errors += p.Totals.Errors
		t.Warnings += p.Totals.Warnings
	}
	return t
}

// ExitCode is 1 when any importer recorded an error.
func (s *Summary) ExitCode() int {
	if s.Totals().Errors > 0 {
		return 1
	}
	return 0
}

func count(n int) string { return humanize.Comma(int64(n)) }

func duration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return durafmt.Parse(d.Round(time.Second)).LimitFirstN(2).String()
}

// WriteSummary renders the per phase table and the grand total.
func WriteSummary(w io.Writer, s *Summary) {
	bold := color.New(color.Bold)
	bold.Fprintln(w, "\n"+strings.Repeat("=", 80))
	color.New(color.Bold, color.FgCyan).Fprintln(w, "IMPORT SUMMARY")
	bold.Fprintln(w, strings.Repeat("=", 80))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Phase", "Importer", "Imported", "Skipped", "Errors", "Warnings", "Time"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
	})

	for _, p := range s.Phases {
		if !p.Ran() {
			continue
		}
		for _, r := range p.Runs {
			if r.Skipped {
				continue
			}
			table.Append([]string{
				p.Phase.String(), r.Key,
				count(r.Result.Imported), count(r.Result.Skipped),
				count(len(r.Result.Errors)), count(len(r.Result.Warnings)),
				duration(r.Elapsed),
			})
		}
		table.Append([]string{
			p.Phase.String(), "(phase total)",
			count(p.Totals.Imported), count(p.Totals.Skipped),
			count(p.Totals.Errors), count(p.Totals.Warnings),
			duration(p.Elapsed),
		})
	}

	t := s.Totals()
	table.SetFooter([]string{
		"", "Total",
		count(t.Imported), count(t.Skipped), count(t.Errors), count(t.Warnings),
		duration(s.Elapsed),
	})
	table.Render()

	if t.Errors > 0 {
		color.New(color.FgRed).Fprintf(w, "Finished with %s errors\n", count(t.Errors))
	} else {
		color.New(color.FgGreen).Fprintln(w, "Finished without errors")
	}
}

// WriteImporterList renders the registry with its phases and dependencies.
func WriteImporterList(w io.Writer, entries []importers.Entry) {
	color.New(color.Bold).Fprintln(w, "\nAvailable importers:")

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Key", "Phase", "Description", "Depends on"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for i, e := range entries {
		table.Append([]string{
			fmt.Sprintf("%2d", i+1), e.Key, importers.PhaseOf(e.Key).Name, e.Description,
			strings.Join(e.Dependencies, ", "),
		})
	}
	table.Render()

	fmt.Fprintln(w, "\nExamples:")
	fmt.Fprintln(w, "  heritage-importer import                      # run every importer")
	fmt.Fprintln(w, "  heritage-importer import --start-at project   # from project onwards")
	fmt.Fprintln(w, "  heritage-importer import --stop-at partner    # up to and including partner")
	fmt.Fprintln(w, "  heritage-importer import --only partner       # partner alone")
}
