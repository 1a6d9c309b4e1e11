// Command hashpassword prints the bcrypt hash of a password, for seeding
// administrator accounts directly in the database.
//
//	go run ./cmd/hashpassword -password 's3cret'
package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	password := flag.String("password", "", "plain-text password to hash")
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "usage: hashpassword -password <value> [-cost n]")
		os.Exit(2)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(hash))
}
