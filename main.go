package main

import "github.com/maxvaer/netsweep/cmd"

func main() {
	cmd.Execute()
}
