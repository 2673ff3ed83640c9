// Command ssdctrl runs the host-interface firmware against a simulated host.
package main

func main() {
	Execute()
}
