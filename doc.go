// Package learner is a distributed key/value and sparse-matrix store.
//
// Clients send fixed-format binary requests to a static, weighted pool of
// servers. Each request is routed to its owner by a pure function of the
// request: matrix metadata by matrix index, rows and cells by matrix plus
// row, columns by matrix plus column, and key/value entries by a Bernstein
// hash of the name.
//
// # Packages
//
//   - vector: sparse and dense float32 vectors with merge-join arithmetic
//   - pagedfile: page-structured file with a free-page bitmap per sector
//   - protocol: the versioned, length-prefixed wire format
//   - routing: request to server assignment over a weighted pool
//   - store: the bbolt backed byte store behind a server
//   - server: the acceptor, reader and worker pipeline
//   - client: request construction, routing and response handling
//   - config: the learner.conf configuration surface
//   - blobstore: backup targets (local, memory, MinIO, S3)
//
// This package holds the ambient pieces shared by all of them: a structured
// Logger on log/slog and the MetricsCollector a server reports to.
//
// # Quick start
//
//	st, _ := store.OpenBolt("learner.db")
//	srv, _ := server.New(st)
//	go srv.ListenAndServe(ctx, ":3579", 10)
//
//	c := client.New()
//	_ = c.AddServer(ctx, "localhost", 1)
//	_ = c.SetKeyValue(ctx, "name", []byte("value"))
//
// The learnerd command wraps the server with a config file, Prometheus
// metrics and scheduled backups. The learner command is a small client.
package learner
