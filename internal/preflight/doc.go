// Package preflight provides readiness checks for the filesystem paths an
// organize run depends on.
//
// The CLI runs RunAll before starting a batch: a run over thousands of files
// should not discover an unreadable input tree or a full output disk halfway
// through.
package preflight
