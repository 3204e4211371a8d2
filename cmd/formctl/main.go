// Command formctl is the operator tool: schema migrations, form definition
// linting and embed snippets.
package main

import (
	"context"
	"log"
	"os"
)

func main() {
	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
