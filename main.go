package main

import "github.com/frahmantamala/request-routing/cmd"

func main() {
	cmd.Execute()
}
