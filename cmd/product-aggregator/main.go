package main

import cmd "github.com/rohmanhakim/product-aggregator/internal/cli"

func main() {
	cmd.Execute()
}
