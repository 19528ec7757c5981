// Package main is the entry point for the pdvd-assess service and CLI.
package main

import "github.com/ortelius/pdvd-assess/internal/cmd"

func main() {
	cmd.Execute()
}
