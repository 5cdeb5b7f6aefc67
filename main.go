package main

import "github.com/Taichi-iskw/idcable/cmd"

func main() {
	cmd.Execute()
}
