// Command btrievectl is a thin CLI over the btrieve package: it never
// implements record-manager semantics itself, only calls the core facade.
package main

func main() {
	execute()
}
