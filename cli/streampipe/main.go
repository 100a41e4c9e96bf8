package main

import (
	"fmt"
	"os"

	streampipecmder "github.com/streampipeco/streampipe/cmd/streampipe"
	"github.com/streampipeco/streampipe/pkg/cliui"
)

func main() {
	cmd := streampipecmder.NewStreampipeCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
		os.Exit(1)
	}
}
