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

// Package info provides the default montps.Info implementation: a name with
// a static fallback and optional dynamic overrides, plus an arbitrary
// key/value info map, both lazily computed and cached until re-registered.
package info

import (
	"sync"

	liberr "github.com/sabouaram/evcore/errors"
)

const (
	ErrorNameEmpty liberr.CodeError = iota + liberr.MinPkgMonitorCfg
)

func init() {
	if !liberr.ExistInMapMessage(ErrorNameEmpty) {
		liberr.RegisterIdFctMessage(ErrorNameEmpty, getMessage)
	}
}

func getMessage(code liberr.CodeError) string {
	switch code {
	case ErrorNameEmpty:
		return "default name cannot be empty"
	}
	return ""
}

// FuncName resolves a dynamic name; a non-nil error falls back to the
// default name.
type FuncName func() (string, error)

// FuncInfo resolves the arbitrary info map exposed alongside a monitor.
type FuncInfo func() (map[string]interface{}, error)

// Info is the default montps.Info: a default name plus optional dynamic
// name/info resolvers, each cached until re-registered.
type Info interface {
	Name() string
	Info() map[string]interface{}
	RegisterName(fct FuncName)
	RegisterInfo(fct FuncInfo)
}

type info struct {
	mu sync.Mutex

	def string

	fctName FuncName
	name    string
	hasName bool

	fctInfo FuncInfo
	info    map[string]interface{}
	hasInfo bool
}

// New builds an Info reporting def whenever no dynamic name resolver is
// registered or the resolver errors.
func New(def string) (Info, error) {
	if def == "" {
		return nil, ErrorNameEmpty.Error(nil)
	}

	return &info{def: def}, nil
}

func (i *info) Name() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.fctName == nil {
		return i.def
	}

	if i.hasName {
		return i.name
	}

	n, e := i.fctName()
	if e != nil {
		return i.def
	}

	i.name = n
	i.hasName = true
	return n
}

func (i *info) RegisterName(fct FuncName) {
	i.mu.Lock()
	i.fctName = fct
	i.hasName = false
	i.name = ""
	i.mu.Unlock()
}

func (i *info) Info() map[string]interface{} {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.fctInfo == nil {
		return nil
	}

	if i.hasInfo {
		return i.info
	}

	m, e := i.fctInfo()
	if e != nil {
		return nil
	}

	i.info = m
	i.hasInfo = true
	return m
}

func (i *info) RegisterInfo(fct FuncInfo) {
	i.mu.Lock()
	i.fctInfo = fct
	i.hasInfo = false
	i.info = nil
	i.mu.Unlock()
}
