// Command hash-generator prints bcrypt hashes for the passwords given as
// arguments, for seeding users by hand.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/phrazzld/task-api/internal/config"
	"github.com/phrazzld/task-api/internal/service/auth"
	"github.com/spf13/viper"
)

func main() {
	// Same variable the server reads for auth.bcrypt_cost.
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	v.SetDefault("auth_bcrypt_cost", 10)
	v.AutomaticEnv()

	cost := flag.Int("cost", v.GetInt("auth_bcrypt_cost"), "bcrypt cost factor")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: hash-generator [-cost n] <password>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	hasher := auth.NewBcryptHasher(*cost)
	failed := false
	for _, password := range flag.Args() {
		hash, err := hasher.Hash(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error generating hash: %v\n", err)
			failed = true
			continue
		}
		fmt.Println(hash)
	}
	if failed {
		os.Exit(1)
	}
}
