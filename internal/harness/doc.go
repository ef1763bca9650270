// Package harness runs conformance scenarios against a real file-backed
// Store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: nested_set
//	description: "set creates intermediate objects"
//	owner_id: app          # default "harness"
//	shard_count: 1         # default 1
//	seed: '{"a": 1}'       # optional raw file contents before the store opens
//	steps:
//	  - op: set
//	    key: a.b.c
//	    value: 1
//	  - op: get
//	    key: a.b.c
//	    expect:
//	      value: 1
//	  - op: push
//	    key: a.b.c
//	    value: 2
//	    expect:
//	      error: NOT_AN_ARRAY
//	  - op: delete
//	    key: a.b
//	    expect:
//	      deleted: true
//	final: { a: {} }
//
// # Operations
//
//   - set, push: key and value (value may be null)
//   - get: expect.value compares the result; expect.absent asserts nil
//   - delete: expect.deleted compares the returned bool
//   - fetch: reloads the open store
//   - reopen: opens a fresh store on the same directory (process restart)
//   - raw: overwrites the backing file with the step's raw text
//
// Any step may set expect.error to an error code (EMPTY_KEY,
// KEY_PATH_NOT_FOUND, NOT_AN_ARRAY, STORAGE_READ, STORAGE_WRITE). A step
// without expect.error must succeed.
//
// final is compared against the document parsed from the backing file, so
// it also checks write-through.
//
// # Deterministic Testing
//
// Every step gets a sequence number from testutil.DeterministicClock and the
// file backend uses a fixed temp-file name, so the trace and final file are
// identical across runs. RunWithGolden compares them against
// testdata/golden/<name>.golden.
package harness
