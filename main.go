package main

import "address-gateway/cmd"

func main() {
	cmd.Execute()
}
