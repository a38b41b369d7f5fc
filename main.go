package main

import "github.com/visionprep/yoloprep/cmd"

func main() {
	cmd.Execute()
}
