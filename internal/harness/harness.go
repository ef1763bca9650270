package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/roach88/datastore/internal/datastore"
	"github.com/roach88/datastore/internal/dberr"
	"github.com/roach88/datastore/internal/ir"
	"github.com/roach88/datastore/internal/store"
	"github.com/roach88/datastore/internal/testutil"
)

// Harness executes one scenario against a file-backed store in a private
// directory.
type Harness struct {
	id      store.Identity
	backend *store.FileBackend
	store   *datastore.Store
	clock   *testutil.DeterministicClock
	logger  *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary directory that is removed
// afterwards. Expectation mismatches are reported in Result.Errors; the
// returned error is reserved for harness failures (bad scenario values,
// temp dir errors).
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	dir, err := os.MkdirTemp("", "datastore-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	h := &Harness{
		id:     scenarioIdentity(scenario),
		clock:  testutil.NewDeterministicClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.backend = store.NewFileBackend(dir,
		store.WithTempNamer(testutil.NewFixedTempNamer("harness")),
		store.WithFileLogger(h.logger),
	)

	if scenario.Seed != "" {
		if err := os.WriteFile(h.backend.Path(h.id), []byte(scenario.Seed), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write seed: %w", err)
		}
	}

	result := NewResult()

	h.store, err = h.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	for i := range scenario.Steps {
		if err := h.executeStep(ctx, i, &scenario.Steps[i], result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	if err := h.readFinal(result); err != nil {
		return nil, err
	}

	if scenario.Final.Kind != 0 {
		want, err := nodeValue(&scenario.Final)
		if err != nil {
			return nil, fmt.Errorf("final: %w", err)
		}
		if !ir.Equal(want, result.Final) {
			result.AddError(fmt.Sprintf("final document: expected %s, got %s", render(want), render(result.Final)))
		}
	}

	return result, nil
}

func scenarioIdentity(s *Scenario) store.Identity {
	id := store.Identity{OwnerID: s.OwnerID, ShardCount: 1}
	if id.OwnerID == "" {
		id.OwnerID = DefaultOwnerID
	}
	if s.ShardCount != nil {
		id.ShardCount = *s.ShardCount
	}
	return id
}

func (h *Harness) open(ctx context.Context) (*datastore.Store, error) {
	return datastore.Open(ctx, h.id,
		datastore.WithBackend(h.backend),
		datastore.WithLogger(h.logger),
	)
}

// executeStep runs one step, records it in the trace and checks its
// expectation.
func (h *Harness) executeStep(ctx context.Context, i int, step *Step, result *Result) error {
	ev := TraceEvent{Seq: h.clock.Next(), Op: step.Op, Key: step.Key}

	var value ir.IRValue
	if step.Value.Kind != 0 {
		v, err := nodeValue(&step.Value)
		if err != nil {
			return fmt.Errorf("value: %w", err)
		}
		value = v
		ev.Value = v
	}

	var opErr error
	switch step.Op {
	case OpSet:
		opErr = h.store.Set(ctx, step.Key, value)
	case OpPush:
		opErr = h.store.Push(ctx, step.Key, value)
	case OpGet:
		ev.Result, opErr = h.store.Get(ctx, step.Key)
	case OpDelete:
		var deleted bool
		deleted, opErr = h.store.Delete(ctx, step.Key)
		if opErr == nil {
			ev.Deleted = &deleted
		}
	case OpFetch:
		opErr = h.store.Fetch(ctx)
	case OpReopen:
		var s *datastore.Store
		s, opErr = h.open(ctx)
		if opErr == nil {
			h.store = s
		}
	case OpRaw:
		if err := os.WriteFile(h.backend.Path(h.id), []byte(step.Raw), 0o644); err != nil {
			return fmt.Errorf("raw write: %w", err)
		}
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	if opErr != nil {
		ev.Error = errorLabel(opErr)
	}
	result.Trace = append(result.Trace, ev)

	h.logger.Debug("step executed", "step", i, "op", step.Op, "key", step.Key, "seq", ev.Seq, "error", ev.Error)

	return h.check(i, step, ev, result)
}

// check compares a traced step against its expect clause.
func (h *Harness) check(i int, step *Step, ev TraceEvent, result *Result) error {
	prefix := fmt.Sprintf("steps[%d] %s %q", i, step.Op, step.Key)

	wantErr := ""
	if step.Expect != nil {
		wantErr = step.Expect.Error
	}
	if ev.Error != wantErr {
		switch {
		case wantErr == "":
			result.AddError(fmt.Sprintf("%s: unexpected error %s", prefix, ev.Error))
		case ev.Error == "":
			result.AddError(fmt.Sprintf("%s: expected error %s, got success", prefix, wantErr))
		default:
			result.AddError(fmt.Sprintf("%s: expected error %s, got %s", prefix, wantErr, ev.Error))
		}
		return nil
	}

	e := step.Expect
	if e == nil || ev.Error != "" {
		return nil
	}

	if e.Absent && ev.Result != nil {
		result.AddError(fmt.Sprintf("%s: expected absent, got %s", prefix, render(ev.Result)))
	}
	if e.Value.Kind != 0 {
		want, err := nodeValue(&e.Value)
		if err != nil {
			return fmt.Errorf("expect.value: %w", err)
		}
		if ev.Result == nil {
			result.AddError(fmt.Sprintf("%s: expected %s, got absent", prefix, render(want)))
		} else if !ir.Equal(want, ev.Result) {
			result.AddError(fmt.Sprintf("%s: expected %s, got %s", prefix, render(want), render(ev.Result)))
		}
	}
	if e.Deleted != nil && ev.Deleted != nil && *e.Deleted != *ev.Deleted {
		result.AddError(fmt.Sprintf("%s: expected deleted=%t, got %t", prefix, *e.Deleted, *ev.Deleted))
	}
	return nil
}

// readFinal parses the backing file into result.Final. A missing file is an
// empty document; an unparsable one is reported as a mismatch.
func (h *Harness) readFinal(result *Result) error {
	data, err := os.ReadFile(h.backend.Path(h.id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read final document: %w", err)
	}
	result.File = data

	v, err := ir.UnmarshalIRValue(data)
	if err != nil {
		result.AddError(fmt.Sprintf("final document is not valid JSON: %v", err))
		return nil
	}
	obj, ok := v.(ir.IRObject)
	if !ok {
		result.AddError(fmt.Sprintf("final document is %s, not an object", ir.TypeName(v)))
		return nil
	}
	result.Final = obj
	return nil
}

func errorLabel(err error) string {
	if code := dberr.CodeOf(err); code != "" {
		return string(code)
	}
	return err.Error()
}

func render(v ir.IRValue) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(data)
}
