// Package markdown parses and renders the TASKS.md ledger format.
//
// A task block looks like:
//
//	- [ ] **Fix failing tests in tests/parser_test.go**:
//	  - **ID**: 12
//	  - **Description**: Fix 2 failing tests in tests/parser_test.go
//	  - **Pre-requisites**:
//	    - None
//	  - **Priority**: Critical
//	  - **Estimated Time**: 30 minutes
//	  - **Assignee**: Roo
//	  - **Create Date**: 2024-05-01T09:30:00Z
//	  - **Start Date**: 2024-05-01T09:30:00Z
//	  - **Finish Date**: None
//	  - **Subtasks**:
//	    - [x] Fix TestHeader
//	    - [ ] Fix TestBody
//
// Parsing never fails: malformed or missing fields degrade to zero values
// and judgment is deferred to the validate package. The literal value
// "None" (and the empty string) normalizes to unset, and unrecognized
// metadata keys are skipped for forward compatibility.
//
// The document as a whole has three regions: a preamble ending at the first
// long "---" separator, the managed region holding the four priority
// sections plus the archive, and a trailer starting at the second
// separator. RenderDocument regenerates the managed region wholesale from
// task data; rewriting is therefore idempotent and diff-stable rather than
// an incremental patch of the previous text.
package markdown
