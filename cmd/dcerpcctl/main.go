// dcerpcctl is a CLI client exercising a DCE/RPC connection: bind to a
// server and negotiate presentation contexts, or issue a raw call.
package main

import "github.com/mellowdrifter/dcerpc/cmd/dcerpcctl/commands"

func main() {
	commands.Execute()
}
