// scout is a terminal client for a streaming research assistant.
package main

import "github.com/linanwx/scout/cmd"

func main() {
	cmd.Execute()
}
