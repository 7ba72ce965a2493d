package main

import "boatbooking/cmd"

func main() {
	cmd.Execute()
}
