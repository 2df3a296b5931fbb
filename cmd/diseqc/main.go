// Command diseqc sends DiSEqC commands through a DVB frontend.
package main

func main() {
	Execute()
}
