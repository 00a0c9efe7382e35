package main

import (
	"fmt"
	"os"

	"shelf/internal/client"
)

func main() {
	cmd, err := client.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	baseURL := os.Getenv("SHELF_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	c := client.New(baseURL)

	switch cmd.Action {
	case client.ActionUpload:
		result, err := c.Upload(cmd.Class, cmd.FilePath, cmd.BookID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ %s\n", result.Message)
		fmt.Printf("  %s%s\n", baseURL, result.URL)

	case client.ActionList:
		assets, err := c.List(cmd.Class)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(assets) == 0 {
			fmt.Printf("No %s stored\n", cmd.Class)
			return
		}
		for _, a := range assets {
			fmt.Printf("%-30s %10s  %s\n", a.Filename, humanizeBytes(a.Size), a.URL)
		}

	case client.ActionDelete:
		var result *client.DeleteResponse
		if cmd.BookID != "" {
			result, err = c.DeleteByBookID(cmd.Class, cmd.BookID)
		} else {
			result, err = c.DeleteByFilename(cmd.Class, cmd.Filename)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✓ %s\n", result.Message)
		for _, name := range result.DeletedFiles {
			fmt.Printf("  deleted %s\n", name)
		}
	}
}

// humanizeBytes formats a byte count into a human-readable string.
func humanizeBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
