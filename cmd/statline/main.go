// Statline samples host metrics on a fixed schedule, retains them in a local
// SQLite database, and serves queries and scheduler controls over HTTP.
package main

func main() {
	Execute()
}
