package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func main() {
	kind := flag.String("kind", "wallet", "key kind: wallet or operator")
	flag.Parse()

	switch *kind {
	case "wallet":
		key, err := generateRandomHex(64)
		if err != nil {
			log.Fatalf("failed to generate wallet encryption key: %v", err)
		}
		fmt.Println("Generated wallet encryption key")
		fmt.Printf("WALLET_ENCRYPTION_KEY=%s\n", key)
	case "operator":
		key, err := ethcrypto.GenerateKey()
		if err != nil {
			log.Fatalf("failed to generate operator key: %v", err)
		}
		fmt.Println("Generated operating account key")
		fmt.Printf("OPERATOR_PRIVATE_KEY=%s\n", hex.EncodeToString(ethcrypto.FromECDSA(key)))
		fmt.Printf("OPERATOR_ADDRESS=%s\n", ethcrypto.PubkeyToAddress(key.PublicKey).Hex())
	default:
		log.Fatalf("invalid kind: %s (allowed: wallet, operator)", *kind)
	}
}

func generateRandomHex(n int) (string, error) {
	b := make([]byte, n/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
