package main

import "github.com/youssefmrini/embed-dashboard-AIBI/cmd"

func main() {
	cmd.Execute()
}
