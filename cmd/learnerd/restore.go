package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/learner/blobstore"
)

type restoreCommand struct {
	Target string `short:"t" long:"target" description:"backup target URL; defaults to the configured backup_target"`
	Name   string `short:"n" long:"name" description:"backup to restore; defaults to the newest"`
	List   bool   `short:"l" long:"list" description:"list the backups instead of restoring"`
	Output string `short:"o" long:"output" description:"database file to write; defaults to the configured data_path"`
	Force  bool   `short:"f" long:"force" description:"overwrite an existing output file"`
}

func (c *restoreCommand) Execute(_ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(bootstrapLogger())
	if err != nil {
		return err
	}

	if c.Target == "" {
		c.Target = cfg.BackupTarget
	}

	if c.Output == "" {
		c.Output = cfg.DataPath
	}

	if c.Target == "" {
		return errors.New("learnerd: no backup target")
	}

	target, err := openTarget(ctx, c.Target)
	if err != nil {
		return err
	}

	backups, err := blobstore.Backups(ctx, target, backupPrefix)
	if err != nil {
		return err
	}

	if c.List {
		for _, name := range backups {
			fmt.Println(name)
		}

		return nil
	}

	name := c.Name
	if name == "" {
		if len(backups) == 0 {
			return fmt.Errorf("learnerd: no backups in %s", c.Target)
		}

		name = backups[len(backups)-1]
	}

	n, err := restoreTo(ctx, target, name, c.Output, c.Force)
	if err != nil {
		return err
	}

	fmt.Printf("restored %s to %s (%d bytes)\n", name, c.Output, n)

	return nil
}

// restoreTo writes the backup into a temporary file next to path and
// renames it into place once complete.
func restoreTo(ctx context.Context, src blobstore.Store, name, path string, force bool) (int64, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return 0, fmt.Errorf("learnerd: %s exists; use --force to overwrite", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, err
	}

	n, err := blobstore.Restore(ctx, src, name, tmp)
	if err == nil {
		err = tmp.Sync()
	}

	if cerr := tmp.Close(); err == nil {
		err = cerr
	}

	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}

	if err != nil {
		return n, errors.Join(err, os.Remove(tmp.Name()))
	}

	return n, nil
}
