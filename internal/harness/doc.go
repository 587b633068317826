// Package harness provides scenario-driven conformance testing for progcdc.
//
// A scenario describes what the nesting system's tables contain at each of a
// series of snapshot passes. The harness loads each pass into a SQLite
// database laid out like the production source, runs a real snapshot pass
// through source.Fetcher, tracker.Tracker and store.Store, and then checks
// the resulting change logs.
//
// # Scenario Format
//
//	name: repost_within_threshold
//	description: "Delete and re-post 5s apart collapses to a re-post marker"
//	repost_threshold: 15s        # optional
//	archive_codes:               # optional, defaults A/B/C
//	  posted: SN100
//	  deleted: SN101
//	  updated: SN102
//	passes:
//	  - programs:
//	      - name: "51234"
//	        machine: Titan
//	        posted_at: 2024-03-01T06:00:00Z
//	        sheet: { name: S12345, grade: 50/50W, material: 50/50W-0100, heat: A4A100, po: "4500252867" }
//	        parts:
//	          - { name: x1a, work_order: "1200055", qty: 1 }
//	  - programs: []
//	    archive:
//	      - { program: "51234", code: B, at: 2024-03-01T06:01:40Z }
//	assertions:
//	  - type: log_kinds
//	    program: 51234
//	    kinds: [posted, deleted]
//
// Program, Stock and PIP rows are replaced at every pass. Archive rows
// accumulate, matching the append-only archive table.
//
// # Assertion Types
//
//   - log_kinds: the program's change log has exactly these change kinds
//   - final_status: the folded status of the program
//   - final_parts: the folded part set of the program (exact match)
//   - no_log: the program has never been tracked
//   - report: the touched/changes counters of one pass
//
// # Deterministic Testing
//
// Runs use testutil.StepClock and testutil.SequentialRunIDs, and all source
// timestamps come from the scenario, so change logs are byte-identical across
// runs and can be compared against golden files.
package harness
