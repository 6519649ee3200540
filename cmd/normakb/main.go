// normakb builds and queries a knowledge base over normative rules
// documents: token-bounded chunks plus keyword and article indices.
package main

import (
	"fmt"
	"os"

	"github.com/normakb/normakb/cmd/normakb/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
