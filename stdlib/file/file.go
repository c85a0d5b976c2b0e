// Package file exposes operating-system files as first-class core
// values: call to read or write, iterate to stream lines. It imports
// the core; the core never imports it (§4.8).
package file

import (
	"bufio"
	"os"
	"runtime"

	"sentracore/internal/types"
)

// FileType wraps *os.File. A File is iterable line-by-line — grounded
// in the same "walk, read, classify" loop the teacher's filesystem
// baseliner uses, repurposed here from hashing a directory tree to
// streaming a single file's lines.
var FileType = &types.TypeDescriptor{Name: "file"}

type File struct {
	f      *os.File
	closed bool
}

func (*File) Type() *types.TypeDescriptor { return FileType }

// Open wraps f as a core value and arranges for it to be closed on GC
// if the script never closes it explicitly (§5 "Shared resources").
func Open(f *os.File) *File {
	file := &File{f: f}
	runtime.SetFinalizer(file, func(file *File) { file.Close() })
	return file
}

// Close tolerates being called more than once.
func (file *File) Close() error {
	if file.closed {
		return nil
	}
	file.closed = true
	return file.f.Close()
}

type fileIter struct {
	file   *File
	scan   *bufio.Scanner
	line   string
	atEnd  bool
}

var fileIterType = &types.TypeDescriptor{Name: "file-iterator"}

func (*fileIter) Type() *types.TypeDescriptor { return fileIterType }

func init() {
	// call(file, n): read n bytes. call(file, s): write s. Anything
	// else is a TypeError — there is no third call shape.
	FileType.Call = func(caller types.State, self types.Value, args []types.Value) (types.State, types.Value) {
		file := self.(*File)
		if file.closed {
			return caller, types.NewError(types.ReadError, "file is closed")
		}
		if len(args) != 1 {
			return caller, types.NewError(types.TypeError, "file call takes exactly one argument")
		}
		switch arg := types.Deref(args[0]).(type) {
		case types.Int:
			buf := make([]byte, arg.V)
			n, err := file.f.Read(buf)
			if err != nil && n == 0 {
				return caller, types.NewError(types.ReadError, err.Error())
			}
			return caller, types.String{V: string(buf[:n])}
		case types.String:
			_, err := file.f.WriteString(arg.V)
			if err != nil {
				return caller, types.NewError(types.WriteError, err.Error())
			}
			return caller, self
		default:
			return caller, types.NewError(types.TypeError, "file call argument must be an integer or a string")
		}
	}

	FileType.Iterate = func(caller types.State, self types.Value) (types.State, types.Value) {
		file := self.(*File)
		it := &fileIter{file: file, scan: bufio.NewScanner(file.f)}
		return advanceFileIter(caller, it)
	}
	fileIterType.Next = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*fileIter)
		return advanceFileIter(caller, it)
	}
	fileIterType.Key = func(caller types.State, self types.Value) (types.State, types.Value) {
		return caller, types.Nil
	}
	fileIterType.Value = func(caller types.State, self types.Value) (types.State, types.Value) {
		it := self.(*fileIter)
		return caller, types.String{V: it.line}
	}
}

// Register installs the file type descriptors into reg, mirroring
// the way the teacher's module loader wires a module's globals in.
func Register(reg *types.Registry) {
	reg.RegisterType(FileType)
	reg.RegisterType(fileIterType)
}

func advanceFileIter(caller types.State, it *fileIter) (types.State, types.Value) {
	if !it.scan.Scan() {
		it.atEnd = true
		return caller, types.Nil
	}
	it.line = it.scan.Text()
	return caller, it
}
