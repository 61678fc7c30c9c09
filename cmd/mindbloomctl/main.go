package main

import "mindbloom-backend/interfaces/cli"

func main() {
	cli.Execute()
}
