package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"stackwalker/internal/dataset"
	"stackwalker/internal/filerecord"
	"stackwalker/internal/logging"
	"stackwalker/internal/tags"
)

// ErrRootInaccessible is returned when the scan root cannot be listed.
var ErrRootInaccessible = errors.New("scan root inaccessible")

// Options controls a scan.
type Options struct {
	Recursive  bool
	Workers    int
	SkipHidden bool
	// Extensions is an allow-list of lower-case suffixes such as ".tif".
	Extensions []string
	Scope      filerecord.Scope
	// Progress is called after each parsed file. Calls are serialized.
	Progress func(done, total int)
	Logger   *slog.Logger
}

// InvalidFile is a file excluded from every data set.
type InvalidFile struct {
	Path string `json:"path"`
	Err  error  `json:"-"`
}

// MarshalJSON renders Err as a string.
func (f InvalidFile) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Path  string `json:"path"`
		Error string `json:"error"`
	}{f.Path, msg})
}

// Result is the outcome of one scan.
type Result struct {
	Root     string                      `json:"root"`
	Records  []*filerecord.Record        `json:"-"`
	DataSets map[string]*dataset.DataSet `json:"data_sets"`
	Invalid  []InvalidFile               `json:"invalid"`
	// Skipped counts files left out by the hidden and extension filters and
	// symlinks resolving to a file already scanned. They are not invalid.
	Skipped int `json:"skipped"`
}

// InvalidCount returns the number of files that failed to parse.
func (r *Result) InvalidCount() int {
	return len(r.Invalid)
}

// Scan lists root, parses every candidate with set, and aggregates the valid
// records.
func Scan(ctx context.Context, root string, set tags.Set, opts Options) (*Result, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "scanner"))

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootInaccessible, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootInaccessible, root)
	}
	parser, err := filerecord.NewParser(root, set, filerecord.Options{Recursive: opts.Recursive, Scope: opts.Scope})
	if err != nil {
		if errors.Is(err, filerecord.ErrCanonicalPath) || errors.Is(err, filerecord.ErrUnresolvedPath) {
			return nil, fmt.Errorf("%w: %w", ErrRootInaccessible, err)
		}
		return nil, err
	}

	result := &Result{Root: parser.Root(), Invalid: []InvalidFile{}}
	candidates, err := list(ctx, parser.Root(), opts, result)
	if err != nil {
		return nil, err
	}
	logger.Debug("scan listing complete",
		logging.String("root", parser.Root()),
		logging.Int("candidates", len(candidates)),
		logging.Int("skipped", result.Skipped),
	)

	records, invalid, err := parseAll(ctx, parser, candidates, opts, logger)
	if err != nil {
		return nil, err
	}
	result.Invalid = append(result.Invalid, invalid...)
	sort.SliceStable(result.Invalid, func(i, j int) bool { return result.Invalid[i].Path < result.Invalid[j].Path })

	filerecord.SortByComparable(records)
	records, aliases := dropAliases(records, logger)
	result.Skipped += aliases
	result.Records = records
	result.DataSets = dataset.Aggregate(records)
	for _, ds := range result.DataSets {
		ds.Root = parser.Root()
	}

	logger.Info("scan complete",
		logging.String("root", parser.Root()),
		logging.Int("records", len(records)),
		logging.Int("data_sets", len(result.DataSets)),
		logging.Int("invalid", len(result.Invalid)),
		logging.String(logging.FieldEventType, "scan_complete"),
	)
	return result, nil
}

// list returns candidate file paths below root in traversal order.
func list(ctx context.Context, root string, opts Options, result *Result) ([]string, error) {
	var candidates []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return fmt.Errorf("%w: %w", ErrRootInaccessible, err)
			}
			// Unreadable sub-directory: report it and keep walking.
			result.Invalid = append(result.Invalid, InvalidFile{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if !opts.Recursive || (opts.SkipHidden && isHidden(name)) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if opts.SkipHidden && isHidden(name) {
			result.Skipped++
			return nil
		}
		if !matchesExtension(name, opts.Extensions) {
			result.Skipped++
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func parseAll(ctx context.Context, parser *filerecord.Parser, paths []string, opts Options, logger *slog.Logger) ([]*filerecord.Record, []InvalidFile, error) {
	records := make([]*filerecord.Record, len(paths))
	errs := make([]error, len(paths))

	var (
		mu   sync.Mutex
		done int
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(opts.Workers, 1))
	for i, path := range paths {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			rec, err := parser.Parse(path)
			if err != nil && filerecord.IsFatal(err) {
				return err
			}
			records[i], errs[i] = rec, err
			if opts.Progress != nil {
				mu.Lock()
				done++
				opts.Progress(done, len(paths))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		if filerecord.IsFatal(err) {
			logging.ErrorWithContext(logger, "scan aborted: file path could not be resolved", "scan_fatal_io",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the storage holding the scan root is mounted and readable"),
			)
		}
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	valid := make([]*filerecord.Record, 0, len(paths))
	var invalid []InvalidFile
	for i, rec := range records {
		if errs[i] != nil {
			invalid = append(invalid, InvalidFile{Path: paths[i], Err: errs[i]})
			logger.Debug("file excluded", logging.String("path", paths[i]), logging.Error(errs[i]))
			continue
		}
		valid = append(valid, rec)
	}
	return valid, invalid, nil
}

// dropAliases keeps the first record per canonical path. A symlink to a file
// that is also listed resolves to the same path and would otherwise be
// grouped, planned and moved twice.
func dropAliases(records []*filerecord.Record, logger *slog.Logger) ([]*filerecord.Record, int) {
	seen := make(map[string]struct{}, len(records))
	kept := records[:0]
	for _, rec := range records {
		if _, ok := seen[rec.Path]; ok {
			logger.Debug("alias skipped", logging.String("path", rec.Path))
			continue
		}
		seen[rec.Path] = struct{}{}
		kept = append(kept, rec)
	}
	return kept, len(records) - len(kept)
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func matchesExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
