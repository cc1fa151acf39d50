// Command keygen generates a base64-encoded AES key for
// CREDENTIAL_ENCRYPTION_KEY.
package main

import (
	"flag"
	"fmt"
	"log"

	"llm_dispatch/internal/secrets"
)

func main() {
	size := flag.Int("size", 32, "key size in bytes (16, 24, or 32)")
	flag.Parse()

	key, err := secrets.GenerateKey(*size)
	if err != nil {
		log.Fatalf("Failed to generate key: %v", err)
	}

	fmt.Println(key)
}
