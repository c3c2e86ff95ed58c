// Package progress fans out job progress updates to registered observers.
//
// A running job publishes an [Update] after each snapshot it makes visible;
// a [Subject] forwards it to every registered [Observer]. Observers are
// called on the job's goroutine and must return quickly: [ChannelObserver]
// drops updates rather than block, and [LoggingObserver] throttles its output.
package progress
