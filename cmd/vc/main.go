// Command vc is the CLI front end for the versioning engine: it resolves a
// configured context to a MongoDB connection, opens an engine against the
// target collection it names, and runs one versioning operation per
// invocation.
package main

import "os"

func main() {
	os.Exit(Run())
}
