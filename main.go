package main

import "github.com/onokazu777/edinet-viewer/cmd"

func main() {
	cmd.Execute()
}
