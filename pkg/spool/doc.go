// Package spool raises events dropped as files into a directory.
//
// Each file holds one event envelope (see events.Envelope) in YAML or JSON.
// Writers must create the file under a temporary name ending in ".tmp" and
// rename it into place once complete; only creations of finished files are
// picked up. A processed file is renamed with a ".done" suffix, a file that
// could not be decoded or raised gets a ".failed" suffix.
//
//	w := spool.NewWatcher("/var/spool/backoffice-audit", bus, logger)
//	if err := w.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package spool
