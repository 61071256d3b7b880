package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	units "github.com/docker/go-units"

	"github.com/jandubois/droidlaunch/internal/mirror"
	"github.com/jandubois/droidlaunch/internal/runner"
)

// Outcome reports what Ensure did.
type Outcome string

const (
	AlreadyPresent Outcome = "already-present"
	Installed      Outcome = "installed"
)

// Result is the outcome of Ensure.
type Result struct {
	Outcome Outcome `json:"outcome"`
	Path    string  `json:"path,omitempty"` // the executable, when known
	Dir     string  `json:"dir,omitempty"`  // must be added to PATH after a fresh install
	Bytes   int64   `json:"bytes,omitempty"`
}

// Options configures an Installer. Zero values pick the running platform,
// the scrcpy program name and a "scrcpy" directory under the working one.
type Options struct {
	GOOS     string
	Program  string
	Dir      string
	URL      string // overrides the plan's download URL
	Client   *http.Client
	Runner   runner.Runner
	Progress func(done, total int64)
}

// Installer ensures the tool is installed.
type Installer struct {
	opts Options
}

// New creates an Installer.
func New(opts Options) *Installer {
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	if opts.Program == "" {
		opts.Program = mirror.ProgramName
	}
	if opts.Dir == "" {
		opts.Dir = mirror.ProgramName
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Minute}
	}
	if opts.Runner == nil {
		opts.Runner = runner.NewExec()
	}
	return &Installer{opts: opts}
}

// Plan returns the plan for the configured platform.
func (i *Installer) Plan() (Plan, error) {
	return PlanFor(i.opts.GOOS)
}

// Ensure installs the tool unless it is already on PATH or already
// extracted into the target directory. Calling it again after a successful
// install downloads nothing.
func (i *Installer) Ensure(ctx context.Context) (Result, error) {
	if path, err := i.opts.Runner.LookPath(i.opts.Program); err == nil {
		return Result{Outcome: AlreadyPresent, Path: path}, nil
	}

	plan, err := i.Plan()
	if err != nil {
		return Result{}, err
	}
	if path, ok := i.findExtracted(); ok {
		return Result{Outcome: AlreadyPresent, Path: path, Dir: filepath.Dir(path)}, nil
	}
	if plan.Method == MethodDelegate {
		return Result{}, fmt.Errorf("%w:\n%s", ErrManualInstall, plan.Instructions)
	}

	url := plan.URL
	if i.opts.URL != "" {
		url = i.opts.URL
	}
	if err := os.MkdirAll(i.opts.Dir, 0755); err != nil {
		return Result{}, fmt.Errorf("create %s: %w", i.opts.Dir, err)
	}

	archive := filepath.Join(i.opts.Dir, plan.Filename)
	slog.Info("downloading", "url", url, "to", archive)
	n, err := i.download(ctx, url, archive)
	if err != nil {
		os.Remove(archive)
		return Result{}, err
	}
	slog.Info("download complete", "size", units.HumanSize(float64(n)))

	if err := Extract(archive, i.opts.Dir); err != nil {
		return Result{}, err
	}
	if err := os.Remove(archive); err != nil {
		slog.Warn("remove archive failed", "path", archive, "error", err)
	}

	path, ok := i.findExtracted()
	if !ok {
		return Result{}, fmt.Errorf("%s not found in extracted archive", i.executable())
	}
	return Result{Outcome: Installed, Path: path, Dir: filepath.Dir(path), Bytes: n}, nil
}

func (i *Installer) download(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	resp, err := i.opts.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download: server returned status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", dest, err)
	}

	pw := &progressWriter{total: resp.ContentLength, report: i.opts.Progress}
	n, err := io.Copy(f, io.TeeReader(resp.Body, pw))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("download: %w", err)
	}
	return n, nil
}

func (i *Installer) executable() string {
	if i.opts.GOOS == "windows" {
		return i.opts.Program + ".exe"
	}
	return i.opts.Program
}

// findExtracted looks for the executable anywhere below the target directory.
func (i *Installer) findExtracted() (string, bool) {
	name := i.executable()
	var found string
	err := filepath.WalkDir(i.opts.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Debug("scan install directory failed", "dir", i.opts.Dir, "error", err)
	}
	return found, found != ""
}

type progressWriter struct {
	done   int64
	total  int64
	report func(done, total int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	if p.report != nil {
		p.report(p.done, p.total)
	}
	return len(b), nil
}
