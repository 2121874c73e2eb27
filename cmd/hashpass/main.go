// hashpass generates the salt and salted hash for the gateway's
// configured credential pair.
//
//	$ hashpass <password>
//	AUTH_SALT=...
//	AUTH_PASSWORD_HASH=...
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/stockpeek/edge-gateway/internal/service"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpass <password>")
		os.Exit(2)
	}

	salt, hash, err := service.HashPassword(os.Args[1])
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	fmt.Printf("AUTH_SALT=%s\n", salt)
	fmt.Printf("AUTH_PASSWORD_HASH=%s\n", hash)
}
