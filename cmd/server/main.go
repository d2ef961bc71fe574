// Package main is the entry point of the ability prediction service.
//
// The main package stays minimal: it hands control to the cobra command tree
// in root.go. All real work lives in internal/ packages.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		// cobra has already printed the error.
		os.Exit(1)
	}
}
