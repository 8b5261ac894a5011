// Package check holds the analysis checks that produce diagnostics.
//
// File checks see one parsed translation unit at a time. Program checks
// collect per-file Facts that the driver merges after all workers finish, so
// their verdicts do not depend on how files were split between workers.
package check

import (
	"context"

	"sift/internal/diag"
)

// Check is the common part of every check.
type Check interface {
	// Name is the error id the check reports under.
	Name() string
	Severity() diag.Severity
}

// FileCheck inspects a single unit.
type FileCheck interface {
	Check
	Run(ctx context.Context, u *Unit, r diag.Reporter) error
}

// ProgramCheck needs knowledge of every analyzed file.
type ProgramCheck interface {
	Check
	// Collect records what the check needs to know about u.
	Collect(u *Unit, f *Facts)
	// Resolve reports findings over the facts of all files, given in
	// file order.
	Resolve(files []FileFacts, r diag.Reporter)
}

// Facts is the whole-program knowledge extracted from one file. It is
// stored in the result cache next to the file's diagnostics.
type Facts struct {
	Functions []FuncDef `msgpack:"fn,omitempty"`
	// Uses holds every referenced function-like name, sorted and unique.
	Uses []string `msgpack:"uses,omitempty"`
}

// FuncDef is a function definition.
type FuncDef struct {
	Name string `msgpack:"name"`
	Line int    `msgpack:"line"`
}

// FileFacts pairs facts with the file they came from.
type FileFacts struct {
	File  string
	Facts Facts
}

// Set is an ordered collection of checks.
type Set struct {
	Files   []FileCheck
	Program []ProgramCheck
}

// Default returns every built-in check.
func Default() Set {
	return Set{
		Files:   []FileCheck{ZeroDiv{}, MissingInclude{}},
		Program: []ProgramCheck{UnusedFunction{}},
	}
}

// Select keeps the checks enabled by sel.
func (s Set) Select(sel Selection) Set {
	var out Set
	for _, c := range s.Files {
		if sel.CheckEnabled(c) {
			out.Files = append(out.Files, c)
		}
	}
	for _, c := range s.Program {
		if sel.CheckEnabled(c) {
			out.Program = append(out.Program, c)
		}
	}
	return out
}

// Names returns the ids of all checks in s.
func (s Set) Names() []string {
	names := make([]string, 0, len(s.Files)+len(s.Program))
	for _, c := range s.Files {
		names = append(names, c.Name())
	}
	for _, c := range s.Program {
		names = append(names, c.Name())
	}
	return names
}

// Skipped returns the ids of checks in s that sel leaves disabled.
func (s Set) Skipped(sel Selection) map[string]bool {
	out := make(map[string]bool)
	for _, c := range s.Files {
		if !sel.CheckEnabled(c) {
			out[c.Name()] = true
		}
	}
	for _, c := range s.Program {
		if !sel.CheckEnabled(c) {
			out[c.Name()] = true
		}
	}
	return out
}
