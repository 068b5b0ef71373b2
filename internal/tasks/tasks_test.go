package tasks

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/fmriprep-tools/motiontsv/internal/bids"
	"github.com/fmriprep-tools/motiontsv/internal/models"
	"github.com/fmriprep-tools/motiontsv/internal/motion"
	"github.com/fmriprep-tools/motiontsv/internal/shared"
	helpers "github.com/fmriprep-tools/motiontsv/internal/testing"
)

const motionTSV = "trans_x_mm\ttrans_y_mm\ttrans_z_mm\t" +
	"rot_x_degrees\trot_y_degrees\trot_z_degrees\t" +
	"trans_x_mm_dt\ttrans_y_mm_dt\ttrans_z_mm_dt\t" +
	"rot_x_degrees_dt\trot_y_degrees_dt\trot_z_degrees_dt\tframewise_displacement\n" +
	"0.01 0.02 0.03 0.1 0.2 0.3 0.001 0.002 0.003 0.011 0.021 0.031 0.12\n" +
	"0.04 0.05 0.06 0.4 0.5 0.6 0.004 0.005 0.006 0.041 0.051 0.061 0.15\n"

// writeTimeseries synthesizes a NIfTI-2 dtseries header whose leading axis
// declares the given sample count.
func writeTimeseries(t *testing.T, path string, samples int64) {
	t.Helper()
	buf := make([]byte, 540)
	binary.LittleEndian.PutUint32(buf[0:], 540)
	copy(buf[4:], "n+2\x00\r\n\x1a\n")
	dim := [8]int64{6, 1, 1, 1, 1, samples, 91282, 0}
	for i, d := range dim {
		binary.LittleEndian.PutUint64(buf[16+8*i:], uint64(d))
	}
	helpers.MustWriteFile(t, path, string(buf))
}

func newStudy(t *testing.T) (string, *bids.Resolver) {
	t.Helper()
	root := t.TempDir()
	helpers.MustWriteFile(t, filepath.Join(root, "dataset_description.json"),
		`{"Name": "fixture", "BIDSVersion": "1.8.0"}`)
	return root, bids.NewResolver(root, "rest")
}

func addPair(t *testing.T, r *bids.Resolver, subject, session string, samples int64) {
	t.Helper()
	writeTimeseries(t, r.TimeseriesPath(subject, session), samples)
}

func addInput(t *testing.T, r *bids.Resolver, subject, session, run string, p bids.Pattern) string {
	t.Helper()
	path := r.InputPath(subject, session, run, p)
	helpers.MustWriteFile(t, path, motionTSV)
	return path
}

func newTestEngine(root string) *ProcessEngine {
	layout := bids.NewLayout(root)
	resolver := bids.NewResolver(root, "rest")
	logger := shared.NewLogger(io.Discard)
	return NewProcessEngine(layout, resolver, motion.NewTransformer(), logger)
}

// mockTransformer fails every call with err when set.
type mockTransformer struct {
	err   error
	calls int
}

func (m *mockTransformer) Transform(inputPath, outputPath string) (int, int, error) {
	m.calls++
	if m.err != nil {
		return 0, 0, m.err
	}
	return 1, 12, nil
}

func TestProcessEngine_ProcessRun(t *testing.T) {
	t.Run("processes both patterns", func(t *testing.T) {
		root, r := newStudy(t)
		for _, p := range bids.Patterns() {
			addInput(t, r, "sub-01", "ses-01", "run-01", p)
		}
		engine := newTestEngine(root)

		result, err := engine.ProcessRun(context.Background(), nil, "sub-01", "ses-01", "run-01")
		if err != nil {
			t.Fatalf("ProcessRun() error = %v", err)
		}
		if result.Processed != 2 || result.Skipped != 0 || result.Failed != 0 {
			t.Errorf("counts = (%d, %d, %d), want (2, 0, 0)", result.Processed, result.Skipped, result.Failed)
		}

		helpers.AssertFileExists(t, filepath.Join(root, "sub-01", "ses-01", "func",
			"sub-01_ses-01_task-rest_run-1_desc-filtered_motion.tsv"))

		got := helpers.MustReadFile(t, filepath.Join(root, "sub-01", "ses-01", "func",
			"sub-01_ses-01_task-rest_run-1_motion.tsv"))
		wantHeader := strings.Join(motion.TargetColumns(), "\t")
		if !strings.HasPrefix(got, wantHeader+"\n") {
			t.Errorf("output header = %q, want prefix %q", got, wantHeader)
		}
	})

	t.Run("skips missing input", func(t *testing.T) {
		root, r := newStudy(t)
		addInput(t, r, "sub-01", "ses-01", "run-01", bids.Patterns()[1])
		engine := newTestEngine(root)

		result, err := engine.ProcessRun(context.Background(), nil, "sub-01", "ses-01", "run-01")
		if err != nil {
			t.Fatalf("ProcessRun() error = %v", err)
		}
		if result.Processed != 1 || result.Skipped != 1 {
			t.Errorf("counts = (%d, %d), want (1, 1)", result.Processed, result.Skipped)
		}
		if result.Files[0].Outcome != models.OutcomeSkippedInputMissing {
			t.Errorf("first outcome = %s, want %s", result.Files[0].Outcome, models.OutcomeSkippedInputMissing)
		}
	})

	t.Run("skips existing output", func(t *testing.T) {
		root, r := newStudy(t)
		p := bids.Patterns()[1]
		addInput(t, r, "sub-01", "ses-01", "run-01", p)
		existing := r.OutputPath("sub-01", "ses-01", "run-01", p)
		helpers.MustWriteFile(t, existing, "already here")
		engine := newTestEngine(root)

		result, err := engine.ProcessRun(context.Background(), nil, "sub-01", "ses-01", "run-01")
		if err != nil {
			t.Fatalf("ProcessRun() error = %v", err)
		}
		if result.Processed != 0 {
			t.Errorf("processed = %d, want 0", result.Processed)
		}
		if got := helpers.MustReadFile(t, existing); got != "already here" {
			t.Errorf("existing output was overwritten: %q", got)
		}

		var found bool
		for _, fr := range result.Files {
			if fr.Outcome == models.OutcomeSkippedOutputExists {
				found = true
			}
		}
		if !found {
			t.Error("expected a skipped_output_exists outcome")
		}
	})

	t.Run("records failure for malformed input", func(t *testing.T) {
		root, r := newStudy(t)
		p := bids.Patterns()[1]
		helpers.MustWriteFile(t, r.InputPath("sub-01", "ses-01", "run-01", p), "a\tb\n1 2 3\n")
		engine := newTestEngine(root)

		result, err := engine.ProcessRun(context.Background(), nil, "sub-01", "ses-01", "run-01")
		if err != nil {
			t.Fatalf("ProcessRun() error = %v", err)
		}
		if result.Failed != 1 {
			t.Errorf("failed = %d, want 1", result.Failed)
		}
		helpers.AssertNoFile(t, r.OutputPath("sub-01", "ses-01", "run-01", p))
	})
}

func TestProcessEngine_EnumerateRuns(t *testing.T) {
	tc := []struct {
		name    string
		samples int64
		want    []string
	}{
		{name: "766 samples yield two runs", samples: 766, want: []string{"run-01", "run-02"}},
		{name: "383 samples yield one run", samples: 383, want: []string{"run-01"}},
		{name: "382 samples yield no runs", samples: 382, want: nil},
		{name: "1149 samples yield three runs", samples: 1149, want: []string{"run-01", "run-02", "run-03"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			root, r := newStudy(t)
			addPair(t, r, "sub-01", "ses-01", tt.samples)
			engine := newTestEngine(root)

			runs, err := engine.EnumerateRuns("sub-01", "ses-01")
			if err != nil {
				t.Fatalf("EnumerateRuns() error = %v", err)
			}
			if len(runs) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(runs, tt.want) {
				t.Errorf("EnumerateRuns() = %v, want %v", runs, tt.want)
			}
		})
	}

	t.Run("missing artifact yields no runs", func(t *testing.T) {
		root, _ := newStudy(t)
		engine := newTestEngine(root)

		runs, err := engine.EnumerateRuns("sub-01", "ses-01")
		if err != nil {
			t.Fatalf("EnumerateRuns() error = %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("expected no runs, got %v", runs)
		}
	})
}

func TestProcessEngine_ProcessPair(t *testing.T) {
	t.Run("processes discovered runs", func(t *testing.T) {
		root, r := newStudy(t)
		addPair(t, r, "sub-01", "ses-01", 766)
		addInput(t, r, "sub-01", "ses-01", "run-01", bids.Patterns()[1])
		addInput(t, r, "sub-01", "ses-01", "run-02", bids.Patterns()[1])
		engine := newTestEngine(root)

		result, err := engine.ProcessPair(context.Background(), nil, "sub-01", "ses-01")
		if err != nil {
			t.Fatalf("ProcessPair() error = %v", err)
		}
		if want := []string{"run-01", "run-02"}; !reflect.DeepEqual(result.Runs, want) {
			t.Errorf("Runs = %v, want %v", result.Runs, want)
		}
		if result.Processed != 2 || result.Skipped != 2 {
			t.Errorf("counts = (%d, %d), want (2, 2)", result.Processed, result.Skipped)
		}
	})

	t.Run("missing subject directory is skipped", func(t *testing.T) {
		root, _ := newStudy(t)
		engine := newTestEngine(root)

		result, err := engine.ProcessPair(context.Background(), nil, "sub-99", "ses-01")
		if err != nil {
			t.Fatalf("ProcessPair() error = %v", err)
		}
		if len(result.Files) != 0 || result.Processed != 0 {
			t.Errorf("expected an empty result, got %+v", result)
		}
	})

	t.Run("second pass skips everything", func(t *testing.T) {
		root, r := newStudy(t)
		addPair(t, r, "sub-01", "ses-01", 766)
		addInput(t, r, "sub-01", "ses-01", "run-01", bids.Patterns()[1])
		addInput(t, r, "sub-01", "ses-01", "run-02", bids.Patterns()[1])
		engine := newTestEngine(root)

		first, err := engine.ProcessPair(context.Background(), nil, "sub-01", "ses-01")
		if err != nil {
			t.Fatalf("first ProcessPair() error = %v", err)
		}
		if first.Processed != 2 {
			t.Fatalf("first pass processed = %d, want 2", first.Processed)
		}

		output := r.OutputPath("sub-01", "ses-01", "run-01", bids.Patterns()[1])
		before := helpers.MustReadFile(t, output)

		second, err := engine.ProcessPair(context.Background(), nil, "sub-01", "ses-01")
		if err != nil {
			t.Fatalf("second ProcessPair() error = %v", err)
		}
		if second.Processed != 0 || second.Skipped != 4 {
			t.Errorf("second pass counts = (%d, %d), want (0, 4)", second.Processed, second.Skipped)
		}
		if after := helpers.MustReadFile(t, output); after != before {
			t.Error("second pass modified an existing output")
		}
	})

	t.Run("transform failures do not abort the pair", func(t *testing.T) {
		root, r := newStudy(t)
		addPair(t, r, "sub-01", "ses-01", 766)
		addInput(t, r, "sub-01", "ses-01", "run-01", bids.Patterns()[1])
		addInput(t, r, "sub-01", "ses-01", "run-02", bids.Patterns()[1])

		mock := &mockTransformer{err: errors.New("boom")}
		engine := NewProcessEngine(bids.NewLayout(root), r, mock, shared.NewLogger(io.Discard))

		result, err := engine.ProcessPair(context.Background(), nil, "sub-01", "ses-01")
		if err != nil {
			t.Fatalf("ProcessPair() error = %v", err)
		}
		if result.Failed != 2 {
			t.Errorf("failed = %d, want 2", result.Failed)
		}
		if mock.calls != 2 {
			t.Errorf("transformer calls = %d, want 2", mock.calls)
		}
	})

	t.Run("cancelled context stops processing", func(t *testing.T) {
		root, r := newStudy(t)
		addPair(t, r, "sub-01", "ses-01", 766)
		addInput(t, r, "sub-01", "ses-01", "run-01", bids.Patterns()[1])
		engine := newTestEngine(root)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := engine.ProcessPair(ctx, nil, "sub-01", "ses-01")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestProcessEngine_RunParticipant(t *testing.T) {
	t.Run("requires subject labels", func(t *testing.T) {
		root, _ := newStudy(t)
		engine := newTestEngine(root)

		_, err := engine.RunParticipant(context.Background(), nil, nil, []string{"ses-01"})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("requires session labels", func(t *testing.T) {
		root, _ := newStudy(t)
		engine := newTestEngine(root)

		_, err := engine.RunParticipant(context.Background(), nil, []string{"sub-01"}, nil)
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("processes the label cross product", func(t *testing.T) {
		root, r := newStudy(t)
		addPair(t, r, "sub-01", "ses-01", 383)
		addInput(t, r, "sub-01", "ses-01", "run-01", bids.Patterns()[1])
		addPair(t, r, "sub-02", "ses-01", 383)
		addInput(t, r, "sub-02", "ses-01", "run-01", bids.Patterns()[1])
		engine := newTestEngine(root)

		result, err := engine.RunParticipant(context.Background(), nil,
			[]string{"sub-01", "sub-02"}, []string{"ses-01"})
		if err != nil {
			t.Fatalf("RunParticipant() error = %v", err)
		}
		if result.Level != models.LevelParticipant {
			t.Errorf("Level = %s, want %s", result.Level, models.LevelParticipant)
		}
		if len(result.Pairs) != 2 {
			t.Errorf("pairs = %d, want 2", len(result.Pairs))
		}
		if result.Processed != 2 {
			t.Errorf("processed = %d, want 2", result.Processed)
		}
	})

	t.Run("unknown subject is skipped not fatal", func(t *testing.T) {
		root, r := newStudy(t)
		addPair(t, r, "sub-01", "ses-01", 383)
		addInput(t, r, "sub-01", "ses-01", "run-01", bids.Patterns()[1])
		engine := newTestEngine(root)

		result, err := engine.RunParticipant(context.Background(), nil,
			[]string{"sub-01", "sub-99"}, []string{"ses-01"})
		if err != nil {
			t.Fatalf("RunParticipant() error = %v", err)
		}
		if len(result.Pairs) != 2 {
			t.Errorf("pairs = %d, want 2", len(result.Pairs))
		}
		if result.Processed != 1 {
			t.Errorf("processed = %d, want 1", result.Processed)
		}
	})
}

func TestProcessEngine_RunGroup(t *testing.T) {
	t.Run("discovers subjects and sessions", func(t *testing.T) {
		root, r := newStudy(t)
		addPair(t, r, "sub-01", "ses-01", 766)
		addInput(t, r, "sub-01", "ses-01", "run-01", bids.Patterns()[1])
		addInput(t, r, "sub-01", "ses-01", "run-02", bids.Patterns()[1])
		addPair(t, r, "sub-02", "ses-01", 382)
		engine := newTestEngine(root)

		progressCh := make(chan ProgressUpdate, 100)
		var updates []ProgressUpdate
		done := make(chan bool)
		go func() {
			for update := range progressCh {
				updates = append(updates, update)
			}
			done <- true
		}()

		result, err := engine.RunGroup(context.Background(), progressCh)
		close(progressCh)
		<-done

		if err != nil {
			t.Fatalf("RunGroup() error = %v", err)
		}
		if result.Level != models.LevelGroup {
			t.Errorf("Level = %s, want %s", result.Level, models.LevelGroup)
		}
		if len(result.Pairs) != 2 {
			t.Errorf("pairs = %d, want 2", len(result.Pairs))
		}
		if result.Processed != 2 || result.Skipped != 2 {
			t.Errorf("counts = (%d, %d), want (2, 2)", result.Processed, result.Skipped)
		}

		if len(updates) == 0 {
			t.Fatal("RunGroup() should send progress updates")
		}
		phases := map[Phase]bool{}
		for _, u := range updates {
			phases[u.Phase] = true
		}
		for _, want := range []Phase{Discover, Enumerate, Process, Finalize} {
			if !phases[want] {
				t.Errorf("missing %s phase update", want)
			}
		}
	})

	t.Run("missing root is fatal", func(t *testing.T) {
		engine := newTestEngine(filepath.Join(t.TempDir(), "absent"))

		_, err := engine.RunGroup(context.Background(), nil)
		if !errors.Is(err, shared.ErrMissingDataset) {
			t.Errorf("expected ErrMissingDataset, got %v", err)
		}
	})
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	root, r := newStudy(t)
	addPair(t, r, "sub-01", "ses-01", 383)
	addInput(t, r, "sub-01", "ses-01", "run-01", bids.Patterns()[1])
	engine := newTestEngine(root)

	// Create a channel with buffer 0 to test non-blocking behavior
	progressCh := make(chan ProgressUpdate)

	// Don't consume from channel to simulate blocked consumer
	done := make(chan bool)
	go func() {
		_, err := engine.ProcessPair(context.Background(), progressCh, "sub-01", "ses-01")
		if err != nil {
			t.Errorf("ProcessPair() error = %v", err)
		}
		done <- true
	}()

	select {
	case <-done:
		// Success - operation completed even with blocked progress channel
	case <-context.Background().Done():
		t.Error("ProcessPair() should not block on progress sends")
	}
}
