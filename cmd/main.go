package main

import (
	cmd "github.com/kerbaras/mangapdf/cmd/mangapdf"
)

func main() {
	cmd.Execute()
}
