// Command neotables regenerates the Neo N3 syscall and native-contract
// lookup tables from the C# reference sources.
package main

func main() {
	Execute()
}
