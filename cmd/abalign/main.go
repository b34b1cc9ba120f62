// cmd/abalign/main.go
package main

import (
	"abalign/internal/app"
	"abalign/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
