package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/learner/pagedfile"
)

type pagesCommand struct {
	Args struct {
		Path string `positional-arg-name:"file" required:"yes"`
	} `positional-args:"yes"`
}

func (c *pagesCommand) Execute(_ []string) error {
	// Open creates missing files.
	if _, err := os.Stat(c.Args.Path); err != nil {
		return err
	}

	f, err := pagedfile.Open(c.Args.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	return describe(os.Stdout, f)
}

func describe(w io.Writer, f *pagedfile.File) error {
	fmt.Fprintf(w, "file:       %s\n", f.Path())
	fmt.Fprintf(w, "page size:  %d\n", f.PageSize())
	fmt.Fprintf(w, "pages:      %d (%d free)\n", f.Pages(), f.FreePages())
	fmt.Fprintf(w, "sectors:    %d\n", f.Sectors())
	fmt.Fprintf(w, "length:     %d\n", f.Length())

	for slot := range pagedfile.NumAttributes {
		v, err := f.Attribute(slot)
		if err != nil {
			return err
		}

		if v != 0 {
			fmt.Fprintf(w, "attribute %2d: %d\n", slot, v)
		}
	}

	return nil
}
