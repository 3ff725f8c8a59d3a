package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/srpgate/srpgate/internal/auth"
	"github.com/srpgate/srpgate/internal/config"
	"github.com/srpgate/srpgate/pkg/srp"
)

func runEnroll(args []string) error {
	fs := flag.NewFlagSet("enroll", flag.ExitOnError)
	registryDir := fs.String("registry", "/var/lib/srpgate/registry", "registry directory")
	username := fs.String("username", "", "username to enroll")
	group := fs.Int("group", config.DefaultGroup, "SRP group size in bits")
	hashName := fs.String("hash", config.DefaultHash, "digest (sha1, sha256, sha384, sha512)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		return fmt.Errorf("--username is required")
	}

	h, err := config.HashFromName(*hashName)
	if err != nil {
		return err
	}
	cfg, err := srp.NewConfig(*group, h)
	if err != nil {
		return err
	}

	password, err := readPassword()
	if err != nil {
		return err
	}

	registry, err := auth.NewFileRegistry(*registryDir)
	if err != nil {
		return err
	}

	record, err := auth.Enroll(cfg, registry, *username, password)
	if err != nil {
		return err
	}

	fmt.Printf("enrolled %q (group=%d, hash=%s)\n", record.Username, record.Group, record.Hash)
	return nil
}

// readPassword takes the password from SRPGATE_PASSWORD if set, otherwise
// reads one line from stdin, prompting when stdin is a terminal.
func readPassword() (string, error) {
	if password := os.Getenv("SRPGATE_PASSWORD"); password != "" {
		return password, nil
	}

	if info, err := os.Stdin.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
		fmt.Fprint(os.Stderr, "Password: ")
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return password, nil
}
