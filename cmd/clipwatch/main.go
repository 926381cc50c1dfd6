package main

import (
	"github.com/vietddude/clipwatch/internal/cli"
)

func main() {
	cli.Execute()
}
