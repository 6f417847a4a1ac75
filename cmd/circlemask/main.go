// Command circlemask crops an image to a circle on a transparent
// background and writes the result as PNG.
//
//	circlemask button.jpg button.png
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/phambaophuc/circle-mask/internal/services/codec"
	"github.com/phambaophuc/circle-mask/internal/services/processor"
	"go.uber.org/zap"
)

const usage = "Usage: circlemask <input_path> <output_path>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(stdout, usage)
		return 0
	}
	input, output := args[0], args[1]

	p, err := processor.NewImageProcessor(codec.NewPNGCodec(), processor.DefaultOptions(), zap.NewNop())
	if err != nil {
		fmt.Fprintf(stderr, "Error processing %s: %v\n", input, err)
		return 1
	}

	if err := p.ProcessFile(input, output); err != nil {
		fmt.Fprintf(stderr, "Error %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Successfully processed %s -> %s\n", input, output)
	return 0
}
