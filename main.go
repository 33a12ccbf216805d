package main

import "github.com/prompt-sanitizer/host/cmd/promptsan"

func main() { promptsan.Execute() }
