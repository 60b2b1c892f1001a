// Package server implements the learner request pipeline.
//
// One acceptor admits connections, subject to the connection and accept
// rate limits, and queues them for the readers. A reader arms each queued
// connection with a one-shot readiness watch; once a connection is
// readable it moves to the process queue. A worker reads exactly one
// request frame, executes it against the backing store, writes one
// response and queues the connection for the readers again.
//
// Failures are reported in the response code. A malformed frame leaves
// the stream without a frame boundary, so the connection is closed without
// a response.
//
//	st, _ := store.OpenBolt("learner.db")
//	srv, _ := server.New(st, func(o *server.Options) {
//		o.ProcessThreads = 16
//	})
//	err := srv.ListenAndServe(ctx, ":3579", 10)
package server
