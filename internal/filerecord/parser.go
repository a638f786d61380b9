package filerecord

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"stackwalker/internal/tags"
	"stackwalker/internal/textutil"
)

// Scope selects the text that markers are matched against.
type Scope string

const (
	// ScopePath matches markers against the whole comparable path.
	ScopePath Scope = "path"
	// ScopeName matches markers against the file name only.
	ScopeName Scope = "name"
)

// ParseScope converts a configuration value into a Scope.
func ParseScope(value string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(value))) {
	case "", ScopePath:
		return ScopePath, nil
	case ScopeName:
		return ScopeName, nil
	default:
		return "", fmt.Errorf("unknown match scope %q (want path or name)", value)
	}
}

// Options controls parsing behaviour.
type Options struct {
	Recursive bool
	Scope     Scope
}

// Parser turns file paths below one root into records.
type Parser struct {
	root string
	set  tags.Set
	opts Options
}

// NewParser resolves root and binds it to the definitions in set.
func NewParser(root string, set tags.Set, opts Options) (*Parser, error) {
	if len(set) == 0 {
		return nil, tags.ErrNoEnabledDefinitions
	}
	canonical, err := Canonicalize(root)
	if err != nil {
		return nil, err
	}
	if opts.Scope == "" {
		opts.Scope = ScopePath
	}
	return &Parser{root: canonical, set: set, opts: opts}, nil
}

// Parse is a one-shot helper equivalent to NewParser followed by Parse.
func Parse(root string, recursive bool, file string, set tags.Set) (*Record, error) {
	p, err := NewParser(root, set, Options{Recursive: recursive})
	if err != nil {
		return nil, err
	}
	return p.Parse(file)
}

// Root returns the canonical scan root.
func (p *Parser) Root() string {
	return p.root
}

// Set returns the definitions the parser matches.
func (p *Parser) Set() tags.Set {
	return p.set
}

// Parse builds a record for file. The returned error is a *ParseError; use
// IsFatal to detect unreachable storage.
func (p *Parser) Parse(file string) (*Record, error) {
	canonical, err := Canonicalize(file)
	if err != nil {
		return nil, &ParseError{Path: file, Err: err}
	}

	comparable, err := p.comparablePath(canonical)
	if err != nil {
		return nil, &ParseError{Path: canonical, Err: err}
	}
	if !p.opts.Recursive && strings.ContainsRune(comparable, filepath.Separator) {
		return nil, &ParseError{Path: canonical, Err: ErrNestedFile}
	}

	subject := comparable
	if p.opts.Scope == ScopeName {
		subject = filepath.Base(comparable)
	}
	subject = textutil.NormalizeNFC(subject)

	outer, _ := p.set.Outermost()
	before, _, found := strings.Cut(subject, outer.Marker)
	if !found {
		return nil, &ParseError{Path: canonical, Tag: outer.Name, Err: ErrMissingOutermostTag}
	}

	values := make(map[string]int, len(p.set))
	digits := make(map[string]int, len(p.set))
	for _, def := range p.set {
		value, width, err := valueOf(subject, def.Marker)
		if err != nil {
			return nil, &ParseError{Path: canonical, Tag: def.Name, Err: err}
		}
		values[def.Name] = value
		digits[def.Name] = width
	}

	return &Record{
		Path:       canonical,
		Name:       filepath.Base(canonical),
		Comparable: comparable,
		DataSet:    before,
		Values:     values,
		Digits:     digits,
	}, nil
}

func (p *Parser) comparablePath(canonical string) (string, error) {
	rest, ok := strings.CutPrefix(canonical, p.root)
	if !ok {
		return "", ErrNotUnderRoot
	}
	if !strings.HasSuffix(p.root, string(filepath.Separator)) {
		// The root must end on a path boundary: /data is not a prefix of /database.
		rest, ok = strings.CutPrefix(rest, string(filepath.Separator))
		if !ok {
			return "", ErrNotUnderRoot
		}
	}
	if rest == "" {
		return "", ErrNotUnderRoot
	}
	return rest, nil
}

// valueOf reads the digits after the single occurrence of marker in subject.
func valueOf(subject, marker string) (int, int, error) {
	switch n := textutil.CountOccurrences(subject, marker); n {
	case 1:
	case 0:
		return 0, 0, fmt.Errorf("%w: marker %q not found", ErrTagAbsent, marker)
	default:
		return 0, 0, fmt.Errorf("%w: marker %q occurs %d times", ErrTagAbsent, marker, n)
	}
	idx := strings.Index(subject, marker)
	run := textutil.LeadingDigits(subject[idx+len(marker):])
	if run == "" {
		return 0, 0, fmt.Errorf("%w: no digits follow marker %q", ErrTagAbsent, marker)
	}
	value, err := strconv.Atoi(run)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, 0, fmt.Errorf("%w: %w: %s", ErrTagAbsent, ErrOutOfRange, run)
		}
		return 0, 0, fmt.Errorf("%w: %v", ErrTagAbsent, err)
	}
	return value, len(run), nil
}

// Canonicalize returns the absolute, symlink-free form of path. The result
// keeps the on-disk byte form; only the matching subject is NFC-normalized.
// Missing targets yield ErrUnresolvedPath, anything else ErrCanonicalPath.
func Canonicalize(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrCanonicalPath)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCanonicalPath, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if isMissingTarget(err) {
			return "", fmt.Errorf("%w: %w", ErrUnresolvedPath, err)
		}
		return "", fmt.Errorf("%w: %w", ErrCanonicalPath, err)
	}
	return resolved, nil
}

func isMissingTarget(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) || errors.Is(err, syscall.ELOOP)
}
