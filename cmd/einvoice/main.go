// einvoice is the offline CLI: validate invoices, run the compliance
// pipeline against a JSON file and verify signatures, all without the API
// or a database.
package main

func main() {
	Execute()
}
