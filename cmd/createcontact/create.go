package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Mindburn-Labs/contacts/pkg/client"
)

// runCreate posts one contact to a running server.
func runCreate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(stderr)

	defaultURL := os.Getenv("CONTACTS_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	baseURL := fs.String("url", defaultURL, "Base URL of a running createcontact server")
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		_, _ = fmt.Fprintln(stderr, "Usage: createcontact create [-url URL] [-timeout D] <first_name> <last_name>")
		return 2
	}

	c := client.New(*baseURL, client.WithTimeout(*timeout))
	msg, err := c.CreateContact(context.Background(), fs.Arg(0), fs.Arg(1))
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			_, _ = fmt.Fprintf(stderr, "createcontact: %s (HTTP %d)\n", apiErr.Message, apiErr.Status)
		} else {
			_, _ = fmt.Fprintf(stderr, "createcontact: %v\n", err)
		}
		return 1
	}

	_, _ = fmt.Fprintln(stdout, msg)
	return 0
}
