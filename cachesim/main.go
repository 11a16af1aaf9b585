// Command cachesim compares cache mapping strategies on a two-level
// inclusive hierarchy.
package main

import "github.com/sarchlab/cachesim/cachesim/cmd"

func main() {
	cmd.Execute()
}
