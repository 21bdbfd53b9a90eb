// Package git is the workflow state engine behind bro.
//
// It opens a working tree and drives the branch lifecycle against it:
//   - Repository handle (open, resolve branches and remotes, current branch)
//   - Remote sync (fetch with progress, pull by rebase or merge, push, remote delete)
//   - Branch lifecycle (create, checkout, delete with optional remote cleanup)
//   - Merge engine (merge-base plus tree-level merge, no merge driver)
//
// Read-side queries go through go-git; operations that change the working
// tree shell out to git through a Runner. Every failure is one of the typed
// errors in internal/errors. This package never prints.
package git
