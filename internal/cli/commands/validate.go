package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/leapmap/internal/cli/output"
	"github.com/leapstack-labs/leapmap/internal/loader"
	"github.com/leapstack-labs/leapmap/pkg/core"
	"github.com/spf13/cobra"
)

// watchDebounce groups bursts of file events into one validation run.
const watchDebounce = 100 * time.Millisecond

// ValidateOutput is the JSON shape of the validate command.
type ValidateOutput struct {
	Valid       bool           `json:"valid"`
	MappingsDir string         `json:"mappings_dir"`
	Files       int            `json:"files"`
	UUID        string         `json:"uuid,omitempty"`
	Counts      map[string]int `json:"counts,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and bind all mapping files",
		Long: `Load every mapping file below the mappings directory, bind them and
report every unresolved reference, duplicate name and inheritance cycle.

With --watch the mappings are validated again whenever a file changes.`,
		Example: `  leapmap validate
  leapmap validate --mappings-dir ./mappings -o json
  leapmap validate --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)
			if !watch {
				return runValidate(cmd.Context(), cc)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watchValidate(ctx, cc)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Validate again whenever a mapping file changes")
	return cmd
}

// validate binds the mappings and reports the outcome without rendering it.
func validate(ctx context.Context, cc *CommandContext) *ValidateOutput {
	out := &ValidateOutput{MappingsDir: cc.Cfg.MappingsDir}

	res, err := cc.bindMappings(ctx)
	if res != nil {
		out.Files = len(res.Files)
	}
	if err != nil {
		out.Errors = errorMessages(err)
		return out
	}

	out.Valid = true
	out.UUID = res.Metadata.UUID().String()
	out.Counts = make(map[string]int)
	for cat, n := range res.Metadata.Counts() {
		if n > 0 {
			out.Counts[cat.String()] = n
		}
	}
	return out
}

func runValidate(ctx context.Context, cc *CommandContext) error {
	out := validate(ctx, cc)
	if err := renderValidate(cc.Renderer, out); err != nil {
		return err
	}
	if !out.Valid {
		return fmt.Errorf("validation failed with %d error(s)", len(out.Errors))
	}
	return nil
}

func renderValidate(r *output.Renderer, out *ValidateOutput) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(out)
	}

	r.Header(1, "mapping validation")
	r.KeyValue("Mappings Dir", out.MappingsDir)
	r.KeyValue("Files", fmt.Sprintf("%d", out.Files))
	r.Println()

	if !out.Valid {
		for _, msg := range out.Errors {
			r.StatusLine(msg, "error", "")
		}
		r.Println()
		r.Error(fmt.Sprintf("%d error(s) found", len(out.Errors)))
		return nil
	}

	rows := make([][]string, 0, len(out.Counts))
	for _, cat := range core.Categories() {
		if n, ok := out.Counts[cat.String()]; ok {
			rows = append(rows, []string{r.Title(cat.String()), fmt.Sprintf("%d", n)})
		}
	}
	if len(rows) > 0 {
		r.Table([]string{"Category", "Count"}, rows)
	}
	r.Success("mappings bound (" + out.UUID + ")")
	return nil
}

// errorMessages flattens binding failures and joined loader errors into one
// message per problem.
func errorMessages(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, errorMessages(e)...)
		}
		return msgs
	}
	var be *core.BindingError
	if errors.As(err, &be) {
		return errorMessages(be)
	}
	return strings.Split(err.Error(), "\n")[:1]
}

// watchValidate validates once, then again after every change below the
// mappings directory until ctx is done.
func watchValidate(ctx context.Context, cc *CommandContext) error {
	_ = runValidate(ctx, cc)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDir(watcher, cc.Cfg.MappingsDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cc.Cfg.MappingsDir, err)
	}
	cc.Renderer.Muted("Watching " + cc.Cfg.MappingsDir + " for changes (Ctrl+C to stop)")

	var debounce *time.Timer
	changed := make(chan string, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchDir(watcher, event.Name)
				}
			}
			if !loader.IsMappingFile(filepath.Base(event.Name)) {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			name := event.Name
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case changed <- name:
				default:
				}
			})

		case name := <-changed:
			cc.Logger.Debug("mapping file changed", slog.String("file", name))
			cc.Renderer.Println()
			cc.Renderer.Muted("Change detected: " + filepath.Base(name))
			_ = runValidate(ctx, cc)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// watchDir recursively adds a directory to the watcher, skipping hidden ones.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
