/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for glitch. Wires the corrupt, scan,
strategies and probe commands, their flags and the viper configuration keys.
*/

package main

import (
	"fmt"
	"os"

	"github.com/prayerslayer/glitch/cmd/glitch/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
