package validate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Pack directories are named <vendor>.<pack>.<version>.
var metaPattern = regexp.MustCompile(`^.*/(?P<vendor>[^/.]+)\.(?P<name>[^/.]+)\.(?P<version>[^/]+)/(?P<svd>[^/]+)\.svd$`)

// Meta identifies an SVD file inside an unpacked CMSIS pack.
type Meta struct {
	Path    string
	Vendor  string
	Name    string
	Version string
	SVD     string // file name without .svd
}

func (m Meta) String() string {
	return fmt.Sprintf("%s.%s.%s/%s.svd", m.Vendor, m.Name, m.Version, m.SVD)
}

// ParseMeta extracts pack metadata from the path of an SVD file.
func ParseMeta(svdPath string) (Meta, error) {
	abs, err := filepath.Abs(svdPath)
	if err != nil {
		return Meta{}, fmt.Errorf("validate: %w", err)
	}
	m := metaPattern.FindStringSubmatch(filepath.ToSlash(abs))
	if m == nil {
		return Meta{}, fmt.Errorf("validate: %s is not inside a <vendor>.<pack>.<version> directory", svdPath)
	}
	return Meta{
		Path:    svdPath,
		Vendor:  m[metaPattern.SubexpIndex("vendor")],
		Name:    m[metaPattern.SubexpIndex("name")],
		Version: m[metaPattern.SubexpIndex("version")],
		SVD:     m[metaPattern.SubexpIndex("svd")],
	}, nil
}

// Discover returns the SVD files under root, sorted by path. root may also be
// a single SVD file. include and exclude are doublestar patterns matched
// against the path relative to root; an empty include selects everything.
func Discover(root string, include, exclude []string) ([]Meta, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	if !info.IsDir() {
		m, err := ParseMeta(root)
		if err != nil {
			return nil, err
		}
		return []Meta{m}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(root), "**/*.svd", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	var metas []Meta
	for _, rel := range matches {
		if !selected(rel, include, exclude) {
			continue
		}
		m, err := ParseMeta(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, err
		}
		metas = append(metas, m)
	}
	if len(metas) == 0 {
		return nil, fmt.Errorf("validate: no SVD files found in %s: %w", root, fs.ErrNotExist)
	}
	slices.SortFunc(metas, func(a, b Meta) int { return strings.Compare(a.Path, b.Path) })
	return metas, nil
}

func selected(rel string, include, exclude []string) bool {
	matched := len(include) == 0
	for _, p := range include {
		if ok, _ := doublestar.Match(p, rel); ok || matchBase(p, rel) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, p := range exclude {
		if ok, _ := doublestar.Match(p, rel); ok || matchBase(p, rel) {
			return false
		}
	}
	return true
}

// matchBase lets a pattern without a slash match the file name alone.
func matchBase(pattern, rel string) bool {
	if strings.Contains(pattern, "/") {
		return false
	}
	ok, _ := doublestar.Match(pattern, path.Base(rel))
	return ok
}
