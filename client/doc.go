// Package client talks to a set of learner servers.
//
// Servers are added with a weight. Every request is routed to exactly one
// server by its target: key/value entries by a hash of their name, rows,
// columns and cells by matrix and row or column index, and matrix
// metadata by matrix index. There is no replication and no failover.
//
//	c := client.New()
//	defer c.Close()
//
//	_ = c.AddServer(ctx, "10.0.0.1", 1)
//	_ = c.AddServer(ctx, "10.0.0.2:3580", 2)
//
//	if err := c.SetKeyValue(ctx, "walrus", []byte("hear me speak")); err != nil {
//		return err
//	}
//
//	v, err := c.GetKeyValue(ctx, "walrus")
//	if errors.Is(err, protocol.CodeUnknownKey) {
//		// not stored
//	}
package client
