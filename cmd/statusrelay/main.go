package main

import "github.com/vietddude/statusrelay/internal/cli"

func main() {
	cli.Execute()
}
