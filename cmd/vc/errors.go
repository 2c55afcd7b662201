package main

import (
	"fmt"
	"os"

	vcstatus "github.com/mongovc/mongovc/pkg/errors"
)

// exitCodeFor maps a command's returned error to a process exit code: the
// error kind's Connect-style status code if it carries one, else 1 for an
// unclassified error.
func exitCodeFor(err error) int {
	fmt.Fprintln(os.Stderr, "vc:", err)
	if code := vcstatus.StatusOf(err); code != 0 {
		return int(code)
	}
	return 1
}
