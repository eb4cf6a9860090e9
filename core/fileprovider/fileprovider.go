/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package fileprovider abstracts a source of named files behind one small
// interface backed by OSProvider, the local-filesystem implementation. The
// http Responder's ServeFile/ServeDir read the local disk directly and do not
// go through this package.
package fileprovider

import (
	"io"
	"os"
	"time"

	liberr "github.com/sabouaram/evcore/errors"
)

const (
	ErrorNotFound liberr.CodeError = iota + liberr.MinPkgFileProvider
	ErrorOpen
	ErrorStat
)

func init() {
	if !liberr.ExistInMapMessage(ErrorNotFound) {
		liberr.RegisterIdFctMessage(ErrorNotFound, getMessage)
	}
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorNotFound:
		return "file provider: object not found"
	case ErrorOpen:
		return "file provider: error opening object"
	case ErrorStat:
		return "file provider: error getting object attributes"
	}
	return ""
}

// Info is the subset of file metadata a provider can report, mirroring
// os.FileInfo's shape without requiring os.FileMode semantics from a
// remote backend.
type Info struct {
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// FileProvider is the minimal contract for reading a named object: Open
// returns a sequential stream (closed by the caller through its Close) and
// Stat reports its metadata. There is no read-at-offset operation.
type FileProvider interface {
	Open(name string) (io.ReadCloser, error)
	Stat(name string) (Info, error)
}

// OSProvider serves files rooted at a local directory.
type OSProvider struct {
	Root string
}

// NewOSProvider returns a FileProvider rooted at root.
func NewOSProvider(root string) *OSProvider {
	return &OSProvider{Root: root}
}

// Open opens name relative to Root.
func (p *OSProvider) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(p.join(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrorNotFound.Error(err)
		}
		return nil, ErrorOpen.Error(err)
	}
	return f, nil
}

// Stat returns metadata for name relative to Root.
func (p *OSProvider) Stat(name string) (Info, error) {
	fi, err := os.Stat(p.join(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, ErrorNotFound.Error(err)
		}
		return Info{}, ErrorStat.Error(err)
	}

	return Info{
		Name:    fi.Name(),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
		IsDir:   fi.IsDir(),
	}, nil
}

func (p *OSProvider) join(name string) string {
	if p.Root == "" {
		return name
	}
	return p.Root + "/" + name
}
