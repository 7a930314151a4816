// Command hrmctl lists and manages HR records through the REST API and
// runs database maintenance against a local configuration.
package main

func main() {
	Execute()
}
