package fetcher

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// unzip extracts a repository archive into dest and returns the path of the
// archive's root directory. Hosting platforms put all contents under a
// single "<repo>-<ref>/" root; entries escaping dest are rejected.
func unzip(file, dest string) (string, error) {
	zf, err := zip.OpenReader(file)
	if err != nil {
		return "", err
	}
	defer zf.Close()

	if len(zf.File) == 0 {
		return "", fmt.Errorf("archive %s is empty", file)
	}

	rootName := strings.SplitN(zf.File[0].Name, "/", 2)[0]
	if rootName == "" {
		return "", fmt.Errorf("archive %s has no root directory", file)
	}

	for _, component := range zf.File {
		name := filepath.FromSlash(component.Name)
		fullPath := filepath.Join(dest, name)
		if !strings.HasPrefix(fullPath, filepath.Clean(dest)+string(os.PathSeparator)) {
			return "", fmt.Errorf("archive entry %q escapes extraction directory", component.Name)
		}

		if component.FileInfo().IsDir() || strings.HasSuffix(component.Name, "/") {
			if err := os.MkdirAll(fullPath, 0o755); err != nil {
				return "", err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return "", err
		}
		if err := extractFile(component, fullPath); err != nil {
			return "", err
		}
	}

	return filepath.Join(dest, rootName), nil
}

func extractFile(component *zip.File, fullPath string) error {
	rc, err := component.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	perm := component.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm|0o200)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
