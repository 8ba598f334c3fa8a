/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interfaces.go
Description: Shared interfaces for glitch. Defines the test case unit that flows
through the corruption pipeline, the mutator contract, and the explicit randomness
provider handed to planners and corruption rules.
*/

package interfaces

import (
	"time"
)

// TestCase represents one byte stream moving through the pipeline.
// Seeds are read from disk; children are produced by a Mutator.
type TestCase struct {
	ID         string
	Data       []byte
	ParentID   string
	Generation int
	CreatedAt  time.Time
	Metadata   map[string]interface{}
}

// Mutator interface for mutating test cases
type Mutator interface {
	Mutate(testCase *TestCase) (*TestCase, error)
	Name() string
	Description() string
}

// RandomSource supplies every random draw made while planning and applying
// corruption. *math/rand.Rand satisfies it.
//
// Implementations are not required to be safe for concurrent use; each
// corruption job owns its own source.
type RandomSource interface {
	Intn(n int) int
	Int63n(n int64) int64
}
