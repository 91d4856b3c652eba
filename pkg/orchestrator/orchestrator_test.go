package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ekaya-inc/heritage-importer/pkg/apperrors"
	"github.com/ekaya-inc/heritage-importer/pkg/importers"
	"github.com/ekaya-inc/heritage-importer/pkg/testhelpers"
	"github.com/ekaya-inc/heritage-importer/pkg/tracker"
)

type stubImporter struct {
	key    string
	result importers.Result
	panics bool
	ran    *[]string
}

func (s *stubImporter) Name() string { return s.key }

func (s *stubImporter) Import(context.Context) importers.Result {
	*s.ran = append(*s.ran, s.key)
	if s.panics {
		panic("boom")
	}
	return s.result
}

func entry(key string, ran *[]string, result importers.Result) importers.Entry {
	return importers.Entry{
		Key:  key,
		Name: key,
		New: func(*importers.Context) importers.Importer {
			return &stubImporter{key: key, result: result, ran: ran}
		},
	}
}

func ok(imported int) importers.Result {
	return importers.Result{Success: true, Imported: imported, Errors: []string{}, Warnings: []string{}}
}

func stubEntries(ran *[]string) []importers.Entry {
	return []importers.Entry{
		entry("language", ran, ok(3)),
		entry("project", ran, ok(2)),
		entry("partner", ran, ok(5)),
		entry("object", ran, ok(10)),
	}
}

func newTestOrchestrator(t *testing.T, entries []importers.Entry) (*Orchestrator, *bytes.Buffer) {
	t.Helper()
	tr := tracker.New()
	ic := &importers.Context{
		Reader:   testhelpers.NewFakeReader(),
		Strategy: testhelpers.NewFakeStrategy(tr),
		Tracker:  tr,
		Logger:   zaptest.NewLogger(t),
	}
	var out bytes.Buffer
	return New(entries, ic, zaptest.NewLogger(t), &out), &out
}

func keys(m map[string]bool) []string {
	var out []string
	for _, k := range []string{"language", "project", "partner", "object"} {
		if m[k] {
			out = append(out, k)
		}
	}
	return out
}

func TestSelect(t *testing.T) {
	var ran []string
	entries := stubEntries(&ran)

	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{"all", Selection{}, []string{"language", "project", "partner", "object"}},
		{"only", Selection{Only: "partner"}, []string{"partner"}},
		{"only wins", Selection{Only: "partner", StartAt: "object", StopAt: "object"}, []string{"partner"}},
		{"start at", Selection{StartAt: "partner"}, []string{"partner", "object"}},
		{"stop at", Selection{StopAt: "project"}, []string{"language", "project"}},
		{"window", Selection{StartAt: "project", StopAt: "partner"}, []string{"project", "partner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(entries, tt.sel)
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(got))
		})
	}
}

func TestSelect_UnknownImporter(t *testing.T) {
	var ran []string
	for _, sel := range []Selection{{Only: "nope"}, {StartAt: "nope"}, {StopAt: "nope"}} {
		_, err := Select(stubEntries(&ran), sel)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrUnknownImporter))
		assert.Equal(t, "Unknown importer: nope", err.Error())
	}
}

func TestSelect_StartAfterStop(t *testing.T) {
	var ran []string
	_, err := Select(stubEntries(&ran), Selection{StartAt: "object", StopAt: "language"})
	require.Error(t, err)
}

func TestRun_SelectedOnly(t *testing.T) {
	var ran []string
	o, out := newTestOrchestrator(t, stubEntries(&ran))

	summary, err := o.Run(context.Background(), Selection{StartAt: "project", StopAt: "partner"})
	require.NoError(t, err)

	assert.Equal(t, []string{"project", "partner"}, ran)
	assert.Equal(t, 7, summary.Totals().Imported)
	assert.Equal(t, 0, summary.ExitCode())
	assert.Contains(t, out.String(), "Starting project")
	assert.NotContains(t, out.String(), "Starting language")

	// Skipped importers still appear in their phase.
	require.Len(t, summary.Phases, 2)
	assert.Equal(t, importers.PhaseReference, summary.Phases[0].Phase)
	assert.False(t, summary.Phases[0].Ran())
	assert.True(t, summary.Phases[0].Runs[0].Skipped)
	assert.Equal(t, importers.PhaseCore, summary.Phases[1].Phase)
	assert.Len(t, summary.Phases[1].Runs, 3)
	assert.Equal(t, 7, summary.Phases[1].Totals.Imported)
}

func TestRun_UnknownImporterRunsNothing(t *testing.T) {
	var ran []string
	o, _ := newTestOrchestrator(t, stubEntries(&ran))

	summary, err := o.Run(context.Background(), Selection{Only: "x"})

	require.ErrorIs(t, err, apperrors.ErrUnknownImporter)
	assert.Nil(t, summary)
	assert.Empty(t, ran)
}

func TestRun_ErrorsSetExitCode(t *testing.T) {
	var ran []string
	entries := stubEntries(&ran)
	entries[2] = entry("partner", &ran, importers.Result{
		Imported: 1,
		Errors:   []string{"a: bad", "b: bad"},
		Warnings: []string{"w"},
	})
	o, out := newTestOrchestrator(t, entries)

	summary, err := o.Run(context.Background(), Selection{})
	require.NoError(t, err)

	assert.Equal(t, []string{"language", "project", "partner", "object"}, ran, "errors do not stop the run")
	totals := summary.Totals()
	assert.Equal(t, 2, totals.Errors)
	assert.Equal(t, 1, totals.Warnings)
	assert.Equal(t, 1, summary.ExitCode())
	assert.Contains(t, out.String(), "partner completed with 2 errors")
	assert.Contains(t, out.String(), "a: bad")
}

func TestRun_PanicBecomesOneError(t *testing.T) {
	var ran []string
	entries := stubEntries(&ran)
	entries[1].New = func(*importers.Context) importers.Importer {
		return &stubImporter{key: "project", panics: true, ran: &ran}
	}
	o, _ := newTestOrchestrator(t, entries)

	summary, err := o.Run(context.Background(), Selection{})
	require.NoError(t, err)

	assert.Equal(t, []string{"language", "project", "partner", "object"}, ran)
	assert.Equal(t, 1, summary.Totals().Errors)
	project := summary.Phases[1].Runs[0]
	assert.Equal(t, []string{"project failed: boom"}, project.Result.Errors)
}

func TestRun_StopsWhenCancelled(t *testing.T) {
	var ran []string
	ctx, cancel := context.WithCancel(context.Background())
	entries := stubEntries(&ran)
	entries[1].New = func(*importers.Context) importers.Importer {
		cancel()
		return &stubImporter{key: "project", result: ok(1), ran: &ran}
	}
	o, _ := newTestOrchestrator(t, entries)

	summary, err := o.Run(ctx, Selection{})

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, []string{"language", "project"}, ran)
	assert.Equal(t, 4, summary.Totals().Imported)
}

func TestWriteSummary(t *testing.T) {
	var ran []string
	o, _ := newTestOrchestrator(t, stubEntries(&ran))
	summary, err := o.Run(context.Background(), Selection{StartAt: "project"})
	require.NoError(t, err)
	summary.Phases[1].Runs[2].Result.Imported = 12345

	var buf bytes.Buffer
	WriteSummary(&buf, summary)
	text := buf.String()

	assert.Contains(t, text, "IMPORT SUMMARY")
	assert.Contains(t, text, "01 Core")
	assert.Contains(t, text, "(phase total)")
	assert.Contains(t, text, "12,345")
	assert.NotContains(t, text, "00 Reference")
	assert.Contains(t, text, "Finished without errors")
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "250ms", duration(250*time.Millisecond))
	assert.Equal(t, "1 minute 5 seconds", duration(65*time.Second))
}

func TestWriteImporterList(t *testing.T) {
	var buf bytes.Buffer
	WriteImporterList(&buf, importers.Registry())

	text := buf.String()
	assert.Contains(t, text, "partner-monument-linker")
	assert.Contains(t, text, "Thematic Gallery")
	assert.Contains(t, text, "--start-at project")
}
