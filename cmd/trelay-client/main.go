package main

import (
	"bufio"
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledzpl/trelay/internal/relay"
)

func main() {
	serverAddr := flag.String("server", "localhost:8888", "Relay address (e.g., localhost:8888)")
	username := flag.String("username", "", "Display name sent during the handshake")
	flag.Parse()

	if *username == "" {
		log.Fatal("Username is required. Use -username flag")
	}

	raw, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", *serverAddr, err)
	}
	conn := relay.NewTCPConn(raw)
	defer conn.Close()

	if err := conn.WriteLine(*username); err != nil {
		log.Fatalf("Handshake failed: %v", err)
	}

	go func() {
		for {
			line, err := conn.ReadLine()
			if err != nil {
				log.Printf("Connection closed: %v", err)
				os.Exit(0)
			}
			printFrame(relay.DecodeFrame(line))
		}
	}()

	fmt.Println("Connected. Plain text chats; /reply <user> <quoted>|<body> replies; /file <path> attaches; /quit exits.")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/quit" {
			return
		}

		line, err := buildLine(text)
		if err != nil {
			log.Print(err)
			continue
		}
		if err := conn.WriteLine(line); err != nil {
			log.Fatalf("Failed to send: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("Error reading input: %v", err)
	}
}

// buildLine translates an input line into its client->relay wire form.
func buildLine(text string) (string, error) {
	switch {
	case strings.HasPrefix(text, "/reply "):
		rest := strings.TrimPrefix(text, "/reply ")
		target, remainder, ok := strings.Cut(rest, " ")
		if !ok {
			return "", fmt.Errorf("usage: /reply <user> <quoted>|<body>")
		}
		quoted, body, ok := strings.Cut(remainder, "|")
		if !ok {
			return "", fmt.Errorf("usage: /reply <user> <quoted>|<body>")
		}
		return relay.ClientReply(target, quoted, body), nil
	case strings.HasPrefix(text, "/file "):
		path := strings.TrimSpace(strings.TrimPrefix(text, "/file "))
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return relay.ClientFile(filepath.Base(path), base64.StdEncoding.EncodeToString(data)), nil
	default:
		return text, nil
	}
}

func printFrame(f relay.Frame) {
	switch f.Kind {
	case relay.FrameSystem:
		fmt.Printf("*** %s\n", f.Body)
	case relay.FrameUser:
		fmt.Printf("[%s]: %s\n", f.Sender, f.Body)
	case relay.FrameReply:
		fmt.Printf("[%s] (re %s: %q): %s\n", f.Sender, f.ReplyTo, f.Quoted, f.Body)
	case relay.FrameFile:
		fmt.Printf("[%s] sent file %s (%d base64 bytes)\n", f.Sender, f.FileName, len(f.Payload))
	case relay.FrameUserList:
		fmt.Printf("*** online: %s\n", strings.Join(f.Users, ", "))
	}
}
