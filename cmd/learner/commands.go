package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hupe1980/learner/client"
)

type setCommand struct {
	Args struct {
		Name  string `positional-arg-name:"name" required:"yes"`
		Value string `positional-arg-name:"value" required:"yes"`
	} `positional-args:"yes"`
}

func (c *setCommand) Execute(_ []string) error {
	return run(func(ctx context.Context, cl *client.Client) error {
		return cl.SetKeyValue(ctx, c.Args.Name, []byte(c.Args.Value))
	})
}

type getCommand struct {
	Args struct {
		Name string `positional-arg-name:"name" required:"yes"`
	} `positional-args:"yes"`
}

func (c *getCommand) Execute(_ []string) error {
	return run(func(ctx context.Context, cl *client.Client) error {
		v, err := cl.GetKeyValue(ctx, c.Args.Name)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(stdout, "%s\n", v)

		return err
	})
}

type deleteCommand struct {
	Args struct {
		Name string `positional-arg-name:"name" required:"yes"`
	} `positional-args:"yes"`
}

func (c *deleteCommand) Execute(_ []string) error {
	return run(func(ctx context.Context, cl *client.Client) error {
		return cl.DeleteKeyValue(ctx, c.Args.Name)
	})
}

type rowCommand struct {
	Args struct {
		Matrix int64 `positional-arg-name:"matrix" required:"yes"`
		Row    int64 `positional-arg-name:"row" required:"yes"`
	} `positional-args:"yes"`
}

func (c *rowCommand) Execute(_ []string) error {
	return run(func(ctx context.Context, cl *client.Client) error {
		v, err := cl.RowValue(ctx, c.Args.Matrix, c.Args.Row)
		if err != nil {
			return err
		}

		for index, value := range v.All() {
			if _, err := fmt.Fprintf(stdout, "%d\t%g\n", index, value); err != nil {
				return err
			}
		}

		return nil
	})
}

type cellCommand struct {
	Args struct {
		Action string   `positional-arg-name:"get|set|delete" required:"yes"`
		Matrix int64    `positional-arg-name:"matrix" required:"yes"`
		Row    int64    `positional-arg-name:"row" required:"yes"`
		Column int64    `positional-arg-name:"column" required:"yes"`
		Value  []string `positional-arg-name:"value"`
	} `positional-args:"yes"`
}

func (c *cellCommand) Execute(_ []string) error {
	a := c.Args

	return run(func(ctx context.Context, cl *client.Client) error {
		switch a.Action {
		case "get":
			f, err := cl.CellValue(ctx, a.Matrix, a.Row, a.Column)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(stdout, "%g\n", f)

			return err
		case "set":
			if len(a.Value) != 1 {
				return fmt.Errorf("learner: cell set needs one value")
			}

			f, err := strconv.ParseFloat(a.Value[0], 32)
			if err != nil {
				return err
			}

			return cl.SetCellValue(ctx, a.Matrix, a.Row, a.Column, float32(f))
		case "delete":
			return cl.DeleteCellValue(ctx, a.Matrix, a.Row, a.Column)
		default:
			return fmt.Errorf("learner: unknown cell action %q", a.Action)
		}
	})
}
