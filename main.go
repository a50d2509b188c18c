package main

import "github.com/frahmantamala/household-expense/cmd"

func main() {
	cmd.Execute()
}
