package main

import "github.com/fakeyudi/clickrush/cmd"

func main() {
	cmd.Execute()
}
