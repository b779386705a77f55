package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/possuite/print-bridge/pkg/receipt"
)

const (
	defaultServerURL = "http://localhost:3001"
	defaultPort      = receipt.DefaultPort
)

func main() {
	var serverURL string
	flag.StringVar(&serverURL, "server", defaultServerURL, "Bridge URL")
	flag.StringVar(&serverURL, "s", defaultServerURL, "Bridge URL (short)")
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	serverURL = strings.TrimSuffix(serverURL, "/")
	args := flag.Args()

	var err error
	switch args[0] {
	case "health":
		err = runHealth(serverURL)
	case "test":
		err = runTest(serverURL, args[1:])
	case "print":
		err = runPrint(serverURL, args[1:])
	case "printer":
		err = runPrinter(serverURL, args[1:])
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Print Bridge CLI

Usage:
  print-cli [flags] <command>

Flags:
  -s, -server <url>    Bridge URL (default: %s)

Commands:
  health
    Check whether the bridge is up

  test <ip> [port]
    Send the built-in test receipt to a printer (default port: %d)

  print <ip> <receipt.json> [port]
    Print a receipt payload file to a printer

  printer list
    List registered printers

  printer add-network <host> [port]
    Register a network printer

  printer add-serial <device>
    Register a serial printer

  printer rename <id> <name>
    Set a custom name for a registered printer

  printer remove <id>
    Remove a registered printer

  printer print <id> <receipt.json>
    Print a receipt payload file to a registered printer

  help
    Show this message

Examples:
  print-cli test 192.168.1.100
  print-cli print 192.168.1.100 ./receipt.json
  print-cli printer add-network 192.168.1.100 9100
  print-cli printer rename a1b2c3 "Kitchen Printer"
  print-cli -s http://localhost:8080 printer list

`, defaultServerURL, defaultPort)
}

func runHealth(serverURL string) error {
	body, err := request(http.MethodGet, serverURL+"/health", nil)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", body["service"], body["status"])
	return nil
}

func runTest(serverURL string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: test <ip> [port]")
	}

	port, err := parsePort(args, 1)
	if err != nil {
		return err
	}

	body, err := request(http.MethodPost, serverURL+"/print/test", map[string]any{
		"ip":   args[0],
		"port": port,
	})
	if err != nil {
		return err
	}
	fmt.Println(body["message"])
	return nil
}

func runPrint(serverURL string, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: print <ip> <receipt.json> [port]")
	}

	payload, err := receipt.ParseFile(args[1])
	if err != nil {
		return err
	}

	port, err := parsePort(args, 2)
	if err != nil {
		return err
	}

	body, err := request(http.MethodPost, serverURL+"/print/receipt", map[string]any{
		"ip":      args[0],
		"port":    port,
		"payload": payload,
	})
	if err != nil {
		return err
	}
	fmt.Println(body["message"])
	return nil
}

func runPrinter(serverURL string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: printer <list|add-network|add-serial|rename|remove|print>")
	}

	switch args[0] {
	case "list":
		return printerList(serverURL)
	case "add-network":
		if len(args) < 2 {
			return fmt.Errorf("usage: printer add-network <host> [port]")
		}
		port, err := parsePort(args, 2)
		if err != nil {
			return err
		}
		return printerAdd(serverURL, map[string]any{
			"type": "network",
			"host": args[1],
			"port": port,
		})
	case "add-serial":
		if len(args) < 2 {
			return fmt.Errorf("usage: printer add-serial <device>")
		}
		return printerAdd(serverURL, map[string]any{
			"type":   "serial",
			"device": args[1],
		})
	case "rename":
		if len(args) < 3 {
			return fmt.Errorf("usage: printer rename <id> <name>")
		}
		_, err := request(http.MethodPost,
			serverURL+"/printers/"+args[1]+"/name",
			map[string]any{"name": strings.Join(args[2:], " ")})
		if err == nil {
			fmt.Println("Printer renamed")
		}
		return err
	case "remove":
		if len(args) < 2 {
			return fmt.Errorf("usage: printer remove <id>")
		}
		_, err := request(http.MethodDelete, serverURL+"/printers/"+args[1], nil)
		if err == nil {
			fmt.Println("Printer removed")
		}
		return err
	case "print":
		if len(args) < 3 {
			return fmt.Errorf("usage: printer print <id> <receipt.json>")
		}
		payload, err := receipt.ParseFile(args[2])
		if err != nil {
			return err
		}
		body, err := request(http.MethodPost,
			serverURL+"/printers/"+args[1]+"/print",
			map[string]any{"payload": payload})
		if err != nil {
			return err
		}
		fmt.Println(body["message"])
		return nil
	default:
		return fmt.Errorf("unknown printer subcommand: %s", args[0])
	}
}

func printerList(serverURL string) error {
	body, err := request(http.MethodGet, serverURL+"/printers", nil)
	if err != nil {
		return err
	}

	printers, _ := body["printers"].([]any)
	if len(printers) == 0 {
		fmt.Println("No printers registered")
		return nil
	}

	fmt.Println("Printers:")
	for _, p := range printers {
		entry, ok := p.(map[string]any)
		if !ok {
			continue
		}
		name := entry["name"]
		if name == "" || name == nil {
			name = entry["description"]
		}
		fmt.Printf("  %s: %s (%s)\n", entry["id"], name, entry["type"])
	}
	return nil
}

func printerAdd(serverURL string, req map[string]any) error {
	body, err := request(http.MethodPost, serverURL+"/printers", req)
	if err != nil {
		return err
	}

	if entry, ok := body["printer"].(map[string]any); ok {
		fmt.Printf("Printer registered: %s (%s)\n", entry["id"], entry["description"])
	}
	return nil
}

// parsePort reads an optional positional port argument
func parsePort(args []string, index int) (int, error) {
	if len(args) <= index {
		return defaultPort, nil
	}
	port, err := strconv.Atoi(args[index])
	if err != nil {
		return 0, fmt.Errorf("invalid port: %s", args[index])
	}
	return port, nil
}

// request sends a JSON request to the bridge and decodes the JSON
// response. Non-2xx responses become errors carrying the bridge's
// error message.
func request(method, url string, payload map[string]any) (map[string]any, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to bridge: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg, ok := body["error"].(string); ok && msg != "" {
			return nil, fmt.Errorf("%s", msg)
		}
		return nil, fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	return body, nil
}
