package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
)

// LoadShaderSources reads the named shader files from dir concurrently.
// Files that do not exist are skipped, so the caller keeps the built-in
// source for them.
func LoadShaderSources(ctx context.Context, dir string, names []string) (map[string]string, error) {
	var mu sync.Mutex
	out := make(map[string]string, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(dir, name))
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read shader %s: %w", name, err)
			}
			mu.Lock()
			out[name] = string(data)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ShaderNames returns the file names of the built-in shaders.
func ShaderNames() []string {
	names := make([]string, 0, 8)
	for name := range DefaultShaders() {
		names = append(names, name)
	}
	return names
}
