package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	AddNote(ctx context.Context, videoID, timestamp, text string) error
	Bookmark(ctx context.Context, videoID, timestamp string) error
	Unbookmark(ctx context.Context, videoID string) error
	List(ctx context.Context) error
	Notes(ctx context.Context, videoID string) error
	DeleteNote(ctx context.Context, id string) error
	Login(ctx context.Context, code string) error
	Sync(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the device agent.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands:
//
//	note <videoId> <seconds> <text...>  — save a note on a video
//	bookmark <videoId> <seconds>        — set the video's resume point
//	unbookmark <videoId>                — clear the resume point
//	list                                — list tracked videos
//	notes <videoId>                     — list notes for one video
//	delnote <id>                        — delete a note by id
//	login <code>                        — link this device with a handshake code
//	sync                                — push the local snapshot now
//	status                              — show configuration and link state
//	exit | quit                         — leave the program
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func(ctx context.Context) string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vn> %s > ", statusFn(ctx)))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn("Available commands: note, bookmark, unbookmark, (l)ist, notes, delnote, login, sync, status, exit")

		case "note":
			if len(args) < 3 {
				printlnFn("Usage: note <videoId> <seconds> <text...>")
				continue
			}
			_ = a.AddNote(ctx, args[0], args[1], strings.Join(args[2:], " "))

		case "bookmark":
			if len(args) < 2 {
				printlnFn("Usage: bookmark <videoId> <seconds>")
				continue
			}
			_ = a.Bookmark(ctx, args[0], args[1])

		case "unbookmark":
			if len(args) < 1 {
				printlnFn("Usage: unbookmark <videoId>")
				continue
			}
			_ = a.Unbookmark(ctx, args[0])

		case "l", "list":
			_ = a.List(ctx)

		case "notes":
			if len(args) < 1 {
				printlnFn("Usage: notes <videoId>")
				continue
			}
			_ = a.Notes(ctx, args[0])

		case "delnote":
			if len(args) < 1 {
				printlnFn("Usage: delnote <id>")
				continue
			}
			_ = a.DeleteNote(ctx, args[0])

		case "login":
			if len(args) < 1 {
				printlnFn("Usage: login <code>")
				continue
			}
			_ = a.Login(ctx, args[0])

		case "sync":
			_ = a.Sync(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
