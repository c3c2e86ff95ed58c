// Package orchestration runs several estimation jobs concurrently, drives a
// progress display while they run and analyses the outcomes against the
// known exact values. It talks to presentation code only through the
// ProgressReporter and ResultPresenter interfaces.
package orchestration
