package core

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// UnknownComponent is the component id used when the call stack cannot be resolved.
const UnknownComponent = "unknown"

// Frame is the resolved call site attributed to a log entry.
type Frame struct {
	PC       uintptr
	Function string
	File     string
	Line     int
}

// CallerFrame returns the frame skip levels above the caller of CallerFrame.
// skip 0 identifies the function calling CallerFrame. Wrappers must pass a
// fixed depth that matches their own layering; the facade entry points use
// one depth for every public logging method.
func CallerFrame(skip int) Frame {
	var pcs [1]uintptr
	if runtime.Callers(skip+2, pcs[:]) == 0 {
		return Frame{}
	}
	frame, _ := runtime.CallersFrames(pcs[:]).Next()
	return Frame{
		PC:       pcs[0],
		Function: frame.Function,
		File:     frame.File,
		Line:     frame.Line,
	}
}

// Defined reports whether the frame was resolved.
func (f Frame) Defined() bool {
	return f.Function != "" || f.File != ""
}

// Package returns the import path of the package the frame's function belongs to.
// It is used as the component id keying the per-factory journal cache.
func (f Frame) Package() string {
	if f.Function == "" {
		return UnknownComponent
	}
	// "github.com/a/b.(*T).Method" -> "github.com/a/b"
	name := f.Function
	slash := strings.LastIndexByte(name, '/')
	if dot := strings.IndexByte(name[slash+1:], '.'); dot >= 0 {
		return name[:slash+1+dot]
	}
	return name
}

// FuncName returns the function name without its package path.
func (f Frame) FuncName() string {
	name := f.Function
	if slash := strings.LastIndexByte(name, '/'); slash >= 0 {
		name = name[slash+1:]
	}
	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		return name[dot+1:]
	}
	return name
}

// ShortFile returns "dir/file.go:line", the form zap's short caller encoder uses.
func (f Frame) ShortFile() string {
	if f.File == "" {
		return "???:" + strconv.Itoa(f.Line)
	}
	dir, file := filepath.Split(f.File)
	return filepath.Join(filepath.Base(dir), file) + ":" + strconv.Itoa(f.Line)
}

// String formats the frame as "pkg.Func(file.go:line)".
func (f Frame) String() string {
	if !f.Defined() {
		return UnknownComponent
	}
	return f.Function + "(" + filepath.Base(f.File) + ":" + strconv.Itoa(f.Line) + ")"
}
