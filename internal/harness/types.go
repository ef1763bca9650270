package harness

import "github.com/roach88/datastore/internal/ir"

// TraceEvent records one executed step.
type TraceEvent struct {
	Seq   int64
	Op    string
	Key   string
	Value ir.IRValue // input for set/push

	// Result is the get result; nil when the path was absent.
	Result ir.IRValue

	// Deleted is set for delete steps that did not fail.
	Deleted *bool

	// Error is the error code, or the message for errors without one.
	Error string
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool

	Trace []TraceEvent

	// Errors contains expectation mismatches. Empty if Pass is true.
	Errors []string

	// Final is the document in the backing file after the last step.
	Final ir.IRObject

	// File is the raw backing file, nil if it was never written.
	File []byte
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Final:  ir.IRObject{},
	}
}

// AddError adds an expectation mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// snapshot converts the result into a canonical-JSON friendly tree.
func (r *Result) snapshot(name string) ir.IRObject {
	trace := make(ir.IRArray, len(r.Trace))
	for i, ev := range r.Trace {
		obj := ir.IRObject{
			"op":  ir.IRString(ev.Op),
			"seq": ir.IRInt(ev.Seq),
		}
		if ev.Key != "" {
			obj["key"] = ir.IRString(ev.Key)
		}
		if ev.Value != nil {
			obj["value"] = ev.Value
		}
		if ev.Op == OpGet && ev.Error == "" {
			obj["found"] = ir.IRBool(ev.Result != nil)
			if ev.Result != nil {
				obj["result"] = ev.Result
			}
		}
		if ev.Deleted != nil {
			obj["deleted"] = ir.IRBool(*ev.Deleted)
		}
		if ev.Error != "" {
			obj["error"] = ir.IRString(ev.Error)
		}
		trace[i] = obj
	}

	return ir.IRObject{
		"scenario_name": ir.IRString(name),
		"trace":         trace,
		"final":         r.Final,
	}
}
