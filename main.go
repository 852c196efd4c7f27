package main

import "github.com/Hostably/hostably-backend/cmd"

func main() {
	cmd.Init()
}
