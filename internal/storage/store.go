// Package storage binds the identifier path scheme to a download tree on
// disk. Each repository lives at <root>/<mapped path>/; the directory's
// existence is the only persisted record of a completed download.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/thep200/repo-downloader/internal/repopath"
)

type Store struct {
	Root   string
	Mapper *repopath.Mapper
}

func NewStore(root string, mapper *repopath.Mapper) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root must not be empty")
	}
	return &Store{
		Root:   root,
		Mapper: mapper,
	}, nil
}

// Path returns the absolute directory for an identifier.
func (s *Store) Path(id int64) (string, error) {
	rel, err := s.Mapper.Path(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Root, filepath.FromSlash(rel)), nil
}

// Exists reports whether a repository has already been downloaded, meaning
// its directory is present and non-empty.
func (s *Store) Exists(id int64) (bool, error) {
	dir, err := s.Path(id)
	if err != nil {
		return false, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}

// EnsureRoot creates the storage root and its tmp staging directory. Both
// creations are idempotent.
func (s *Store) EnsureRoot() error {
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return fmt.Errorf("failed to create storage root: %w", err)
	}
	if err := os.MkdirAll(s.TmpDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	return nil
}

// TmpDir is the staging area downloads are extracted into before being
// renamed into place.
func (s *Store) TmpDir() string {
	return filepath.Join(s.Root, "tmp")
}

// Scan walks the tree and decodes the identifiers of every repository
// directory found. Directories that do not conform to the fixed-width digit
// scheme (including the tmp staging area) are skipped. A conforming
// directory at or past the minimum depth counts as a repository once it
// stops looking like another level of groups.
func (s *Store) Scan(ctx context.Context) ([]int64, error) {
	ids, err := s.scanDir(ctx, s.Root, "", 0)
	if err != nil {
		return nil, fmt.Errorf("failed to scan storage tree: %w", err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *Store) scanDir(ctx context.Context, dir, rel string, depth int) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var ids []int64
	for _, e := range entries {
		if !e.IsDir() || !s.isGroup(e.Name()) {
			continue
		}
		childRel := path.Join(rel, e.Name())
		childDir := filepath.Join(dir, e.Name())

		if depth+1 >= s.Mapper.MinGroups {
			leaf, errLeaf := s.isRepoDir(childDir)
			if errLeaf != nil {
				return nil, errLeaf
			}
			if leaf {
				id, errDecode := s.Mapper.Identifier(childRel)
				if errDecode == nil {
					ids = append(ids, id)
				}
				continue
			}
		}

		sub, errSub := s.scanDir(ctx, childDir, childRel, depth+1)
		if errSub != nil {
			return nil, errSub
		}
		ids = append(ids, sub...)
	}
	return ids, nil
}

func (s *Store) isGroup(name string) bool {
	if len(name) != s.Mapper.GroupWidth {
		return false
	}
	for _, c := range name {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// isRepoDir distinguishes a repository directory from a further level of
// groups: repository contents contain at least one entry that is not itself
// a fixed-width digit directory, and an empty conforming directory is a
// repository placeholder rather than a group.
func (s *Store) isRepoDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if !e.IsDir() || !s.isGroup(e.Name()) {
			return true, nil
		}
	}
	return len(entries) == 0, nil
}
