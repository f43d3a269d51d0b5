// Command finctl runs the debt simulator and the statement import pipeline
// against a local SQLite database.
package main

func main() {
	Execute()
}
