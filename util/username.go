package util

import (
	"fmt"
	"math/rand"
)

var names = []string{
	"dog",
	"cat",
	"frog",
	"wren",
	"otter",
	"heron",
}

// GenerateUsername returns a random handle for accounts created without one.
func GenerateUsername() string {
	return fmt.Sprintf("%v%06d", names[rand.Intn(len(names))], rand.Intn(1000000))
}
