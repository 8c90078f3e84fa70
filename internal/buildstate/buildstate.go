// Package buildstate answers one question: is there a previous build that
// can be served without rebuilding?
package buildstate

import (
	"os"
)

// Presence is the result of a single filesystem probe.
type Presence struct {
	Dir        string
	IDFile     string
	DirExists  bool
	FileExists bool
}

// Valid is true iff both the build directory and the identifier file exist.
func (p Presence) Valid() bool {
	return p.DirExists && p.FileExists
}

// Probe checks existence only; contents are never read.
func Probe(dir, idFile string) Presence {
	p := Presence{Dir: dir, IDFile: idFile}
	if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
		p.DirExists = true
	}
	if _, err := os.Stat(idFile); err == nil {
		p.FileExists = true
	}
	return p
}
