package main

import "github.com/ValentinKolb/tinyKV/cmd"

func main() {
	cmd.Execute()
}
