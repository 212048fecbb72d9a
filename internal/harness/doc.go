// Package harness runs conformance scenarios against the conversion pipeline.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: length_bounds
//	description: "length(col) comparisons become length constraints"
//	cases:
//	  - name: upper bound
//	    column: bio
//	    check: "CHECK (length(bio) < 10000)"
//	    expect:
//	      constraints: { exclusiveMax: 10000 }
//	  - column: word
//	    expr:
//	      A_Expr:
//	        kind: AEXPR_OP
//	        name: [{ String: { sval: "=" } }]
//	        lexpr: { ColumnRef: { fields: [{ String: { sval: word } }] } }
//	        rexpr: { FuncCall: { funcname: [{ String: { sval: reverse } }], args: [...] } }
//	    expect:
//	      unreduced: true
//
// A case gives the clause either as SQL text (check, parsed by the caller's
// Parser) or as a raw pg_query tree (expr, no parser needed). Its expect
// block names exactly one outcome: constraints, unreduced or structural.
//
// # Golden Files
//
// RunWithGolden snapshots every case outcome as canonical JSON under
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
