package main

import "github.com/ValentinKolb/nsKV/cmd"

func main() {
	cmd.Execute()
}
