/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error kinds surfaced by a corruption run. Every I/O failure is fatal for
the artifact it hits; callers match kinds with errors.Is.
*/

package core

import "errors"

var (
	// ErrInputNotFound means the input file is missing or unreadable
	ErrInputNotFound = errors.New("input not found")
	// ErrOutputDirectoryUnwritable means the artifact directory cannot be created
	ErrOutputDirectoryUnwritable = errors.New("output directory unwritable")
	// ErrOutputWriteFailed means an artifact could not be written
	ErrOutputWriteFailed = errors.New("output write failed")
	// ErrDuplicateStrategy means two strategies in one sweep share an id
	ErrDuplicateStrategy = errors.New("duplicate strategy id")
	// ErrNoStrategies means the engine was asked to run an empty sweep
	ErrNoStrategies = errors.New("no strategies configured")
)
