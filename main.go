package main

import (
	"sqlitedump/cmd"

	_ "modernc.org/sqlite"
)

func main() {
	cmd.Execute()
}
