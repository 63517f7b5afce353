package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/betwixt/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached instances and solutions",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheDropCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached entries from the file cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.Config.Cache.Backend == config.BackendRedis {
				return fmt.Errorf("cache clear only supports the file backend; use redis-cli to flush %q", c.Config.Cache.Prefix)
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			switch kind {
			case "":
			case "solutions", "instances":
				dir = filepath.Join(dir, kind)
			default:
				return fmt.Errorf("unknown cache kind %q (want solutions or instances)", kind)
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			count := 0
			err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return nil // unreadable entries are skipped
				}
				if !d.IsDir() && filepath.Ext(path) == ".json" && os.Remove(path) == nil {
					count++
				}
				return nil
			})
			if err != nil {
				return err
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "only clear solutions or instances")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// cacheDropCommand creates the "cache drop" subcommand, which forgets the
// cached solution of one instance.
func (c *CLI) cacheDropCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "drop <instance>",
		Short: "Forget the cached solution of an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, err := readInstance(cmd.InOrStdin(), args[0], asJSON)
			if err != nil {
				return err
			}
			set, _ := inst.Set()

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			key := runner.Keyer.SolutionKey(set.Fingerprint(inst.N()), inst.N())
			_, ok, err := runner.Cache.Get(ctx, key)
			if err != nil {
				return err
			}
			if !ok {
				printInfo("No cached solution")
				return nil
			}
			if err := runner.Cache.Delete(ctx, key); err != nil {
				return err
			}
			printSuccess("Dropped cached solution")
			printDetail("Key: %s", key)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "read the instance as JSON")
	return cmd
}
