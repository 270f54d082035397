package main

import "github.com/sciadvances/catalog-api/cmd"

func main() {
	cmd.Execute()
}
