package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tuannm99/pagecache"
	"github.com/tuannm99/pagecache/internal/config"
	"github.com/tuannm99/pagecache/pkg/kmp"
)

const defaultChunkSize = 4 * 1024 * 1024

type searchConfig struct {
	filename  string
	pattern   string
	repeat    int
	chunkSize int
	opts      pagecache.Options
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:          "emasearch <filename> <pattern> <repeat>",
		Short:        "Repeatedly scan a file for a pattern through the user-space page cache",
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[1] == "" {
				return fmt.Errorf("pattern must not be empty")
			}
			repeat, err := strconv.Atoi(args[2])
			if err != nil || repeat <= 0 {
				return fmt.Errorf("repeat must be a positive integer, got %q", args[2])
			}

			sc := searchConfig{
				filename:  args[0],
				pattern:   args[1],
				repeat:    repeat,
				chunkSize: defaultChunkSize,
			}

			if cfgPath != "" {
				cfg, err := config.Load(cfgPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				sc.opts = pagecache.Options{
					PageSize:   cfg.Cache.PageSize,
					CachePages: cfg.Cache.Pages,
					MaxOpen:    cfg.Cache.MaxOpen,
					DirectIO:   cfg.Cache.DirectIO,
				}
				if cfg.Bench.ChunkSize > 0 {
					sc.chunkSize = cfg.Bench.ChunkSize
				}
				if cfg.Bench.Debug {
					slog.SetLogLoggerLevel(slog.LevelDebug)
				}
			}

			return search(sc)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to yaml config")
	return cmd
}

// search runs repeat full passes over the file, reading chunk-sized
// spans through the cache and matching each chunk in place.
func search(sc searchConfig) error {
	begin := time.Now()

	c := pagecache.New(sc.opts)
	fd, err := c.Open(sc.filename)
	if err != nil {
		return fmt.Errorf("open %s: %w", sc.filename, err)
	}
	defer func() { _ = c.Close(fd) }()

	// Reads past end-of-file never short-return, so the scan is
	// bounded by the file size instead.
	size, err := c.Seek(fd, 0, io.SeekEnd)
	if err != nil {
		return err
	}

	matcher := kmp.New([]byte(sc.pattern))
	chunk := make([]byte, sc.chunkSize)
	var totalRead int64

	for rep := 0; rep < sc.repeat; rep++ {
		if _, err := c.Seek(fd, 0, io.SeekStart); err != nil {
			return err
		}

		for off := int64(0); off < size; {
			span := int64(len(chunk))
			if rest := size - off; span > rest {
				span = rest
			}

			n, err := c.Read(fd, chunk[:span])
			if err != nil {
				return fmt.Errorf("read chunk at %d: %w", off, err)
			}
			totalRead += int64(n)

			for _, at := range matcher.Search(chunk[:n], off) {
				fmt.Printf("Found a match at: %d\n", at)
			}
			off += int64(n)
		}
	}

	slog.Debug("scan finished", "passes", sc.repeat, "bytesRead", totalRead)
	fmt.Printf("Duration: %.2f seconds\n", time.Since(begin).Seconds())
	return nil
}
