package main

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/learner/protocol"
	"github.com/hupe1980/learner/server"
	"github.com/hupe1980/learner/store"
)

func TestParseServer(t *testing.T) {
	host, weight, err := parseServer("10.0.0.1:3580=3")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:3580", host)
	assert.Equal(t, 3, weight)

	host, weight, err = parseServer("localhost")
	require.NoError(t, err)
	assert.Equal(t, "localhost", host)
	assert.Equal(t, 1, weight)

	_, _, err = parseServer("localhost=0")
	require.Error(t, err)

	_, _, err = parseServer("localhost=x")
	require.Error(t, err)
}

func TestCommands(t *testing.T) {
	srv, err := server.New(store.NewMemory())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)

	go func() { errc <- srv.Serve(ctx, ln) }()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-errc)
	})

	<-srv.Ready()

	var out bytes.Buffer

	oldGlobal, oldStdout := global, stdout
	global = GlobalOptions{Servers: []string{ln.Addr().String()}, Timeout: 5 * time.Second}
	stdout = &out

	t.Cleanup(func() { global, stdout = oldGlobal, oldStdout })

	set := &setCommand{}
	set.Args.Name, set.Args.Value = "walrus", "hear me speak"
	require.NoError(t, set.Execute(nil))

	get := &getCommand{}
	get.Args.Name = "walrus"
	require.NoError(t, get.Execute(nil))
	assert.Equal(t, "hear me speak\n", out.String())

	del := &deleteCommand{}
	del.Args.Name = "walrus"
	require.NoError(t, del.Execute(nil))
	assert.ErrorIs(t, get.Execute(nil), protocol.CodeUnknownKey)

	out.Reset()

	cell := &cellCommand{}
	cell.Args.Action, cell.Args.Matrix, cell.Args.Row, cell.Args.Column = "set", 1, 2, 3
	cell.Args.Value = []string{"0.5"}
	require.NoError(t, cell.Execute(nil))

	cell.Args.Action, cell.Args.Value = "get", nil
	require.NoError(t, cell.Execute(nil))
	assert.Equal(t, "0.5\n", out.String())

	out.Reset()

	row := &rowCommand{}
	row.Args.Matrix, row.Args.Row = 1, 2
	require.NoError(t, row.Execute(nil))
	assert.Equal(t, "3\t0.5\n", out.String())

	cell.Args.Action = "explode"
	require.Error(t, cell.Execute(nil))
}
