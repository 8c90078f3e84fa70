// Package process starts external commands with the launcher's standard
// streams and reports how they ended.
//
// Runner is the seam the launcher depends on; ExecRunner is the os/exec
// implementation. Exit codes follow the shell convention: a child killed by
// signal N reports 128+N.
package process
