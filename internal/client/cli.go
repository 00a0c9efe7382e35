package client

import (
	"fmt"
	"os"
)

type ValidationError struct {
	Arg   string
	Cause string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Arg, e.Cause)
}

type Action int

const (
	ActionUpload Action = iota
	ActionList
	ActionDelete
)

// Command is a parsed shelfctl invocation.
type Command struct {
	Action   Action
	Class    string
	FilePath string
	BookID   string
	Filename string
}

// ParseArgs parses a shelfctl command line:
//
//	upload <pictures|downloads> <file> [book-id]
//	list   <pictures|downloads>
//	delete <pictures|downloads> --book-id <id> | --filename <name>
func ParseArgs(args []string) (*Command, error) {
	if len(args) == 0 {
		return nil, &ValidationError{Arg: "<command>", Cause: "no command provided"}
	}

	switch args[0] {
	case "upload":
		return parseUpload(args[1:])
	case "list":
		return parseList(args[1:])
	case "delete":
		return parseDelete(args[1:])
	}
	return nil, &ValidationError{Arg: args[0], Cause: "unknown command"}
}

func parseUpload(args []string) (*Command, error) {
	if len(args) < 2 {
		return nil, &ValidationError{Arg: "upload", Cause: "usage: upload <pictures|downloads> <file> [book-id]"}
	}

	class, err := parseClass(args[0])
	if err != nil {
		return nil, err
	}

	path := args[1]
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ValidationError{Arg: path, Cause: "not found or not accessible"}
	}
	if info.IsDir() {
		return nil, &ValidationError{Arg: path, Cause: "is a directory"}
	}

	cmd := &Command{Action: ActionUpload, Class: class, FilePath: path}
	if len(args) > 2 {
		cmd.BookID = args[2]
	}
	return cmd, nil
}

func parseList(args []string) (*Command, error) {
	if len(args) < 1 {
		return nil, &ValidationError{Arg: "list", Cause: "usage: list <pictures|downloads>"}
	}

	class, err := parseClass(args[0])
	if err != nil {
		return nil, err
	}
	return &Command{Action: ActionList, Class: class}, nil
}

func parseDelete(args []string) (*Command, error) {
	if len(args) < 1 {
		return nil, &ValidationError{Arg: "delete", Cause: "usage: delete <pictures|downloads> --book-id <id> | --filename <name>"}
	}

	class, err := parseClass(args[0])
	if err != nil {
		return nil, err
	}

	cmd := &Command{Action: ActionDelete, Class: class}
	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--book-id":
			if i+1 >= len(rest) {
				return nil, &ValidationError{Arg: "--book-id", Cause: "missing value"}
			}
			i++
			cmd.BookID = rest[i]
		case "--filename":
			if i+1 >= len(rest) {
				return nil, &ValidationError{Arg: "--filename", Cause: "missing value"}
			}
			i++
			cmd.Filename = rest[i]
		default:
			return nil, &ValidationError{Arg: rest[i], Cause: "unknown flag"}
		}
	}

	if cmd.BookID == "" && cmd.Filename == "" {
		return nil, &ValidationError{Arg: "delete", Cause: "either --book-id or --filename is required"}
	}
	return cmd, nil
}

func parseClass(s string) (string, error) {
	switch s {
	case "pictures", "downloads":
		return s, nil
	}
	return "", &ValidationError{Arg: s, Cause: "expected pictures or downloads"}
}
