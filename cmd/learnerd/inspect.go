package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/hupe1980/learner/protocol"
	"github.com/hupe1980/learner/store"
)

type inspectCommand struct {
	Args struct {
		Path string `positional-arg-name:"database" description:"database file; defaults to the configured data_path"`
	} `positional-args:"yes"`
}

func (c *inspectCommand) Execute(_ []string) error {
	path := c.Args.Path
	if path == "" {
		cfg, err := loadConfig(bootstrapLogger())
		if err != nil {
			return err
		}

		path = cfg.DataPath
	}

	if _, err := os.Stat(path); err != nil {
		return err
	}

	db, err := store.OpenBolt(path, func(o *store.BoltOptions) { o.ReadOnly = true })
	if err != nil {
		return err
	}
	defer db.Close()

	return summarize(os.Stdout, db)
}

// summarize writes the number of keys and value bytes per item type.
func summarize(w io.Writer, db *store.Bolt) error {
	type tally struct{ keys, bytes int }

	items := map[protocol.Item]*tally{}

	if err := db.ForEach(func(key, value []byte) error {
		if len(key) == 0 {
			return nil
		}

		item := protocol.Item(key[0])

		t, ok := items[item]
		if !ok {
			t = &tally{}
			items[item] = t
		}

		t.keys++
		t.bytes += len(value)

		return nil
	}); err != nil {
		return err
	}

	n, err := db.Len()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %d keys\n", db.Path(), n)

	order := make([]protocol.Item, 0, len(items))
	for item := range items {
		order = append(order, item)
	}

	slices.Sort(order)

	for _, item := range order {
		fmt.Fprintf(w, "  %-10s %8d keys %12d bytes\n", item, items[item].keys, items[item].bytes)
	}

	return nil
}
