// Command genvapid generates a VAPID key pair and writes it to the data
// directory so the server can authenticate push requests.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkadlec/spajz/internal/push"
)

func main() {
	dataDir := flag.String("data-dir", "data", "directory holding vapid.json")
	subject := flag.String("subject", "mailto:admin@localhost", "VAPID contact subject (mailto: or https: URI)")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "create data dir: %v\n", err)
		os.Exit(1)
	}

	pub, priv, err := push.GenerateVAPIDKeys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate VAPID keys: %v\n", err)
		os.Exit(1)
	}

	path := filepath.Join(*dataDir, "vapid.json")
	cfg := push.Config{PublicKey: pub, PrivateKey: priv, Subject: *subject}
	if err := push.WriteConfig(path, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "write VAPID config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("VAPID keys generated and saved to %s\n", path)
	fmt.Printf("Public key: %s\n", pub)
}
