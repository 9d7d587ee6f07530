package main

import (
	"github.com/0glabs/vcfparallel/cmd"
	"github.com/0glabs/vcfparallel/rowmap"
)

func main() {
	rowmap.MaybeServeWorker()

	cmd.Execute()
}
