// Command testbin is a minimal interactive fixture program for testing the
// scriptty library. It reads stdin line by line and responds to commands.
//
// Behavior:
//   - On startup, prints "ready>" prompt
//   - On Enter, processes the current line:
//   - "quit": exits with status 0
//   - "fail": exits with status 1
//   - "paint R C TEXT": prints TEXT at row R, column C via cursor addressing
//   - "clear": erases the screen
//   - "overwrite": rewrites the current line in place (no net grid change
//     beyond the text itself)
//   - Anything else: prints "echo: <line>" and a new "ready>" prompt
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

func main() {
	fmt.Print("ready>")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		input := scanner.Text()

		switch {
		case input == "quit":
			os.Exit(0)

		case input == "fail":
			os.Exit(1)

		case strings.HasPrefix(input, "paint "):
			fields := strings.SplitN(strings.TrimPrefix(input, "paint "), " ", 3)
			if len(fields) != 3 {
				fmt.Print("error: paint R C TEXT\nready>")
				continue
			}
			row, err1 := strconv.Atoi(fields[0])
			col, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil {
				fmt.Print("error: paint R C TEXT\nready>")
				continue
			}
			fmt.Printf("\x1b[%d;%dH%s", row, col, fields[2])
			fmt.Print("\x1b[24;1Hready>")

		case input == "clear":
			fmt.Print("\x1b[2J\x1b[Hready>")

		case input == "overwrite":
			fmt.Print("\rworking...")
			fmt.Print("\rready>    ")

		default:
			fmt.Printf("echo: %s\nready>", input)
		}
	}
}
