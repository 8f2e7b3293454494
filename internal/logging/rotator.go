package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

const backupStamp = "20060102-150405.000"

// FileRotator is an io.Writer over Config.FilePath. The file is moved aside
// to <name>-<stamp><ext> when a write would push it past Config.MaxSize
// megabytes or when the calendar day changes. Moved files are optionally
// gzipped and pruned by MaxBackups and MaxAge.
type FileRotator struct {
	config *Config
	now    func() time.Time

	mu     sync.Mutex
	file   *os.File
	size   int64
	opened time.Time

	// background compress and prune jobs
	jobs sync.WaitGroup
}

// NewFileRotator opens Config.FilePath for appending, creating its directory.
func NewFileRotator(cfg *Config) (*FileRotator, error) {
	r := &FileRotator{config: cfg, now: time.Now}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileRotator) open() error {
	f, err := os.OpenFile(r.config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	r.file, r.size, r.opened = f, info.Size(), r.now()
	return nil
}

// Write implements io.Writer.
func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}
	if r.due(int64(len(p))) {
		if err := r.rotate(); err != nil {
			return 0, fmt.Errorf("rotate log: %w", err)
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// due reports whether the next write of n bytes belongs in a fresh file.
func (r *FileRotator) due(n int64) bool {
	if limit := r.config.MaxSize * 1024 * 1024; limit > 0 && r.size > 0 && r.size+n > limit {
		return true
	}
	return !sameDay(r.opened, r.now())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func (r *FileRotator) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close current log: %w", err)
	}
	r.file = nil

	dir, name, ext := r.nameParts()
	moved := filepath.Join(dir, name+"-"+r.now().Format(backupStamp)+ext)
	if err := os.Rename(r.config.FilePath, moved); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename log file: %w", err)
	}
	if err := r.open(); err != nil {
		return err
	}

	r.jobs.Add(1)
	go func() {
		defer r.jobs.Done()
		if r.config.Compress {
			gzipFile(moved)
		}
		r.prune()
	}()
	return nil
}

func (r *FileRotator) nameParts() (dir, name, ext string) {
	base := filepath.Base(r.config.FilePath)
	ext = filepath.Ext(base)
	return filepath.Dir(r.config.FilePath), strings.TrimSuffix(base, ext), ext
}

type backup struct {
	path    string
	modTime time.Time
}

// backups lists rotated files, oldest first.
func (r *FileRotator) backups() ([]backup, error) {
	dir, name, ext := r.nameParts()
	matches, err := filepath.Glob(filepath.Join(dir, name+"-*"+ext+"*"))
	if err != nil {
		return nil, err
	}

	out := make([]backup, 0, len(matches))
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil {
			out = append(out, backup{path: m, modTime: info.ModTime()})
		}
	}
	slices.SortFunc(out, func(a, b backup) int { return a.modTime.Compare(b.modTime) })
	return out, nil
}

func (r *FileRotator) prune() {
	files, err := r.backups()
	if err != nil {
		return
	}

	var cutoff time.Time
	if r.config.MaxAge > 0 {
		cutoff = r.now().AddDate(0, 0, -r.config.MaxAge)
	}
	excess := 0
	if r.config.MaxBackups > 0 {
		excess = len(files) - r.config.MaxBackups
	}
	for i, f := range files {
		if i < excess || f.modTime.Before(cutoff) {
			os.Remove(f.path)
		}
	}
}

// gzipFile replaces path with path.gz. On failure the original is kept.
func gzipFile(path string) {
	in, err := os.Open(path)
	if err != nil {
		return
	}
	defer in.Close()

	out, err := os.Create(path + ".gz")
	if err != nil {
		return
	}
	gz := gzip.NewWriter(out)
	gz.Name = filepath.Base(path)

	_, err = io.Copy(gz, in)
	if cerr := gz.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path + ".gz")
		return
	}
	in.Close()
	os.Remove(path)
}

// Close waits for pending compress and prune jobs and closes the file.
func (r *FileRotator) Close() error {
	r.jobs.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// Sync flushes the current file to disk.
func (r *FileRotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

// LogFiles returns the current log file followed by the rotated ones,
// oldest first.
func (r *FileRotator) LogFiles() ([]string, error) {
	files := []string{r.config.FilePath}
	backups, err := r.backups()
	for _, b := range backups {
		files = append(files, b.path)
	}
	return files, err
}
