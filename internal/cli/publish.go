package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// publishable lists the document formats the registry accepts.
var publishable = map[string]bool{".yaml": true, ".yml": true, ".json": true}

// Publish uploads YAML/JSON flow documents to the Redis registry. Each file is
// published under its base name; with no files, every document in opts.Dir goes.
func Publish(ctx context.Context, opts Options, files []string, out io.Writer) error {
	if opts.RedisAddr == "" {
		return fmt.Errorf("publish needs a redis address (--redis-addr or %s)", EnvRedisAddr)
	}
	logger := createLogger(opts.Debug)
	reg, err := newRegistry(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer reg.Close()

	if len(files) == 0 {
		if files, err = documentsIn(opts.Dir); err != nil {
			return err
		}
	}

	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f, err)
		}
		id := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		if err := reg.Publish(ctx, id, raw); err != nil {
			return fmt.Errorf("failed to publish %s: %w", f, err)
		}
		fmt.Fprintf(out, "published %s\n", id)
	}
	return nil
}

func documentsIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !publishable[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}
