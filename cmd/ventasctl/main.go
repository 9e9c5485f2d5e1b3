// Command ventasctl queries and exports the sales dataset from the shell.
package main

import "ventas/internal/ctl"

func main() {
	ctl.Execute()
}
