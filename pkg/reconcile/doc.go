// Package reconcile keeps a markdown task list and a GitHub repository's
// issues consistent.
//
// # Identity
//
// A task's `id:` field is embedded in the body of the issue created for it
// as `<!-- tracker-id: ID -->`. Remote issues are always found through that
// marker. The task's `github:` field only caches the issue number; a
// disagreement between the two is reported and left alone.
//
// # Phases
//
// Run executes, once and in order:
//
//  1. TakeSnapshot: fetch every issue, milestone and label.
//  2. Parse the tracker file and validate ids.
//  3. Diff: compute creates and partial updates, local document order.
//  4. Push: apply them one at a time with a fixed pause in between,
//     writing new issue numbers back into the file as each create lands.
//  5. DetectPull: find issues closed or reopened on GitHub.
//  6. Rewrite the checkbox of every task found in step 5.
//
// # Direction
//
// Title, labels, milestone and open/closed state flow local -> remote.
// Only open/closed state flows remote -> local. Titles, labels or
// milestones edited in the GitHub UI are overwritten by the next push and
// never pulled back. This asymmetry is a known limitation.
//
// The ledger remembers each task's state as the last sync left it. When
// the checkbox still matches that state and GitHub does not, the remote
// side changed and its state is pulled instead of pushed: a task checked
// at the last sync whose issue was reopened on GitHub gets unchecked,
// rather than the issue being closed again. With no remembered state the
// local checkbox wins.
//
// # Failure
//
// Transport errors abort the run; whatever was applied stays applied.
// Creating an issue is a three step sequence (create, link into the
// project, write the number back) recorded step by step in a ledger file
// next to the tracker, so a rerun resumes an interrupted sequence instead
// of creating a second issue.
package reconcile
