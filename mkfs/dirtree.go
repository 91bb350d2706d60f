package mkfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.fractalqb.de/fractalqb/mkconv/mkore"
)

// Tree selects the files below Dir that pass Filter. A missing Dir is an
// empty tree.
type Tree struct {
	Dir    mkore.PathProvider
	Filter Filter
}

func FilesWithExt(dir mkore.PathProvider, ext string) Tree {
	return Tree{Dir: dir, Filter: All{IsDir(false), Ext(ext)}}
}

// Files returns the paths of the selected files relative to the tree's
// directory in lexical order.
func (d Tree) Files(in *mkore.Project) (ls []string, err error) {
	err = d.ls(in.AbsPath(d.Dir.Path()), func(p string, e fs.DirEntry) error {
		if !e.IsDir() {
			ls = append(ls, p)
		}
		return nil
	})
	return
}

func (d Tree) ls(root string, do func(string, fs.DirEntry) error) error {
	err := filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path, err = filepath.Rel(root, path); err != nil {
			return err
		}
		if path == "." {
			return nil
		}
		if d.Filter != nil {
			if ok, err := d.Filter.Ok(path, e); err != nil || !ok {
				return err
			}
		}
		return do(path, e)
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

type Filter interface {
	Ok(path string, entry fs.DirEntry) (bool, error)
}

type FilterFunc func(string, fs.DirEntry) (bool, error)

func (ff FilterFunc) Ok(p string, e fs.DirEntry) (bool, error) { return ff(p, e) }

type IsDir bool

func (d IsDir) Ok(_ string, e fs.DirEntry) (bool, error) {
	return e.IsDir() == bool(d), nil
}

type NameMatch string

func (p NameMatch) Ok(_ string, e fs.DirEntry) (bool, error) {
	return filepath.Match(string(p), e.Name())
}

// Ext matches the file name extension, e.g. ".java".
type Ext string

func (x Ext) Ok(_ string, e fs.DirEntry) (bool, error) {
	return strings.EqualFold(filepath.Ext(e.Name()), string(x)), nil
}

func Not(f Filter) Filter {
	return FilterFunc(func(p string, e fs.DirEntry) (bool, error) {
		ok, err := f.Ok(p, e)
		return !ok, err
	})
}

type All []Filter

func (fs All) Ok(p string, e fs.DirEntry) (bool, error) {
	for _, f := range fs {
		if ok, err := f.Ok(p, e); err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}
