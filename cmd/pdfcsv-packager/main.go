package main

import "github.com/dustinops/pdfcsv-packager/cmd/pdfcsv-packager/cmd"

func main() {
	cmd.Execute()
}
