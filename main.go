package main

import "github.com/lista-de-compras/shopping-list-services/cmd"

func main() {
	cmd.Execute()
}
