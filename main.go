package main

import "progress-tracker.com/progress-tracker/cmd"

func main() {
	cmd.Execute()
}
