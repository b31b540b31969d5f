package util

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"glscene/internal/logger"
)

// Float covers the float types the engine mixes: float32 for GPU data,
// float64 for audio synthesis and noise.
type Float interface {
	~float32 | ~float64
}

// Lerp performs linear interpolation between a and b with t in [0,1]
func Lerp[T Float](a, b, t T) T {
	return a + t*(b-a)
}

// Clamp restricts a value to be between min and max
func Clamp[T Float](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// SmoothStep performs cubic interpolation between a and b
func SmoothStep[T Float](a, b, t T) T {
	t = Clamp(t, 0, 1)
	// 3t² - 2t³
	t = t * t * (3 - 2*t)
	return a + t*(b-a)
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists
func DirExists(dirname string) bool {
	info, err := os.Stat(dirname)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// CreateDirIfNotExist creates a directory if it doesn't exist
func CreateDirIfNotExist(dir string) error {
	if dir == "" || DirExists(dir) {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// ListFilesWithExt lists the files in dir with the given extension, sorted
// by name. The match ignores case.
func ListFilesWithExt(dir, ext string) ([]string, error) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
			files = append(files, filepath.Join(dir, name))
		}
	}
	sort.Strings(files)
	return files, nil
}

// FileNameWithoutExt returns the base name without its extension
func FileNameWithoutExt(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// TimeTrack logs how long something took.
// Usage: defer util.TimeTrack(log, time.Now(), "load shaders")
func TimeTrack(log *logger.Logger, start time.Time, name string) {
	log.Debugf("%s took %s", name, time.Since(start))
}
