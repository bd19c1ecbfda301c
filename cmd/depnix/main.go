package main

import (
	"github.com/depnix/depnix/pkg/cmd"
	_ "github.com/depnix/depnix/pkg/emit/json"
	_ "github.com/depnix/depnix/pkg/emit/nix"
)

func main() {
	cmd.Execute()
}
