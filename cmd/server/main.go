// Package main is the entry point for the device time-series service.
package main

func main() {
	Execute()
}
