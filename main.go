package main

import "github.com/zemen-travel/ms-go-payments/cmd"

func main() {
	cmd.Execute()
}
