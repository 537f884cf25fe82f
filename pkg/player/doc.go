// Package player replays a directory of delta log files at a fixed rate.
//
// A Player scans its directory once, then reads the log files line by line in
// listing order, forever, wrapping back to the first file after the last. Each
// line that decodes as a delta is published on Deltas() after waiting out the
// pacing interval, followed by a progress Status. Lifecycle changes are
// published on Status() as well.
//
// Startup failures (inaccessible directory, listing error, no log files) put the
// player into the terminal StateErrored. There is no recovery; construct a new
// Player to retry.
//
//	p := player.New(cfg.Player(), player.WithLogger(logger))
//	defer p.Close()
//	p.Start()
//	for delta := range p.Deltas() {
//		...
//	}
package player
