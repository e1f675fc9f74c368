package main

func main() {}

//go:wasmexport greet
func greet() {
	println("hello from a component")
}
