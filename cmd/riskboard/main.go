package main

import (
	"github.com/anchore/riskboard/cmd"
)

func main() {
	cmd.Execute()
}
