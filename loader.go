package cadobr

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// File is a document file inside an input root.
type File struct {
	Root string // input root the file was found in
	Rel  string // slash separated path relative to Root
}

// Path returns the file path on disk.
func (f File) Path() string { return filepath.Join(f.Root, filepath.FromSlash(f.Rel)) }

// Folder returns the name of the directory holding the file.
func (f File) Folder() string { return filepath.Base(filepath.Dir(f.Path())) }

// FindFiles scans root recursively and returns the files whose base name
// matches the glob pattern, sorted by relative path.
func FindFiles(root, pattern string) ([]File, error) {
	if pattern == "" {
		pattern = "*.json"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	var files []File
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, d.Name()); !ok {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			// This should not happen if p is in root
			return err
		}
		files = append(files, File{Root: root, Rel: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not scan %q: %w", root, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// Loaded is the outcome of reading one document file.
type Loaded struct {
	File
	Raw         []byte
	Doc         Document
	Diagnostics []Diagnostic
	Err         error // set when the file could not be read as a document
}

// Load reads and decodes one document file. Read and decode failures are
// reported in the Err field so that a batch can go on.
func Load(f File) Loaded {
	l := Loaded{File: f}
	l.Raw, l.Err = os.ReadFile(f.Path())
	if l.Err != nil {
		return l
	}
	l.Doc, l.Diagnostics, l.Err = Decode(l.Raw, f.Folder())
	if l.Err != nil {
		l.Err = fmt.Errorf("%s: %w", f.Rel, l.Err)
	}
	return l
}

// WriteFile writes data to the file at the same relative path under another root.
func WriteFile(root string, f File, data []byte) error {
	dst := File{Root: root, Rel: f.Rel}.Path()
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("could not create directory for %q: %w", dst, err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("could not write %q: %w", dst, err)
	}
	return nil
}
