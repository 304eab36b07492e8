package fs

import (
	"context"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/optimize/internal/core/domain"
	"go.trai.ch/optimize/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.AssetStore = (*DirStore)(nil)

const mapSuffix = ".map"

// DirStore reads upstream bundler output from one directory and writes generated
// variants to another, which may be the same directory.
type DirStore struct {
	inDir   string
	outDir  string
	walker  *Walker
	hasher  ports.Hasher
	ignores []string
}

// NewDirStore creates a store over inDir and outDir.
func NewDirStore(inDir, outDir string, walker *Walker, hasher ports.Hasher) *DirStore {
	return &DirStore{
		inDir:  filepath.Clean(inDir),
		outDir: filepath.Clean(outDir),
		walker: walker,
		hasher: hasher,
	}
}

// WithIgnores skips input files and directories matching any of the patterns.
func (s *DirStore) WithIgnores(patterns ...string) *DirStore {
	s.ignores = append(s.ignores, patterns...)
	return s
}

// Assets reads every file under the input directory. Source maps are attached to
// the file they describe rather than listed. Files with identical contents share
// one *domain.Asset, so they are transformed once.
func (s *DirStore) Assets(ctx context.Context) ([]domain.File, error) {
	interned := make(map[string]*domain.Asset)
	var files []domain.File

	for name := range s.walker.WalkFiles(s.inDir, s.ignores) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.HasSuffix(name, mapSuffix) {
			continue
		}

		path := filepath.Join(s.inDir, filepath.FromSlash(name))
		source, err := os.ReadFile(path) //nolint:gosec // path is produced by walking inDir
		if err != nil {
			return nil, zerr.With(errors.Join(domain.ErrAssetReadFailed, err), "path", path)
		}
		sourceMap, err := readOptional(path + mapSuffix)
		if err != nil {
			return nil, zerr.With(errors.Join(domain.ErrAssetReadFailed, err), "path", path+mapSuffix)
		}

		key := s.hasher.ContentHash(source) + ":" + s.hasher.ContentHash(sourceMap)
		asset, ok := interned[key]
		if !ok {
			asset = &domain.Asset{Source: source, Map: sourceMap}
			interned[key] = asset
		}
		files = append(files, domain.File{Name: name, Asset: asset})
	}
	return files, nil
}

// Write stores out under name in the output directory, with its map alongside.
func (s *DirStore) Write(name string, out domain.Output) error {
	path, err := s.outputPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return zerr.With(errors.Join(domain.ErrAssetWriteFailed, err), "path", path)
	}
	if err := os.WriteFile(path, out.Code, domain.FilePerm); err != nil { //nolint:gosec // output files are world-readable
		return zerr.With(errors.Join(domain.ErrAssetWriteFailed, err), "path", path)
	}
	if out.Map == nil {
		return removeIfExists(path + mapSuffix)
	}
	if err := os.WriteFile(path+mapSuffix, out.Map, domain.FilePerm); err != nil { //nolint:gosec // output files are world-readable
		return zerr.With(errors.Join(domain.ErrAssetWriteFailed, err), "path", path+mapSuffix)
	}
	return nil
}

// Remove deletes name and its map from the output directory.
func (s *DirStore) Remove(name string) error {
	path, err := s.outputPath(name)
	if err != nil {
		return err
	}
	if err := removeIfExists(path); err != nil {
		return err
	}
	return removeIfExists(path + mapSuffix)
}

func (s *DirStore) outputPath(name string) (string, error) {
	path := filepath.Join(s.outDir, filepath.FromSlash(name))
	rel, err := filepath.Rel(s.outDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.Annotate(domain.ErrOutputPathOutsideRoot, "name", name)
	}
	return path, nil
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // sibling of a walked file
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return zerr.With(errors.Join(domain.ErrAssetRemoveFailed, err), "path", path)
	}
	return nil
}
