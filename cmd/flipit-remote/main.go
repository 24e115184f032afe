// ABOUTME: Remote control shell for a Flip It server
// ABOUTME: Discovers a server over mDNS, follows its state and sends commands
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/harperreed/flipit/internal/app"
	"github.com/harperreed/flipit/internal/client"
	"github.com/harperreed/flipit/internal/discovery"
	"github.com/harperreed/flipit/pkg/transport"
)

var (
	serverAddr = flag.String("server", "", "Server address host:port (skips mDNS discovery)")
	timeout    = flag.Duration("timeout", 5*time.Second, "How long to browse for a server")
	quiet      = flag.Bool("quiet", false, "Only print command results")
)

func main() {
	flag.Parse()

	addr, path := *serverAddr, discovery.FeedPath
	if addr == "" {
		info, err := discover(*timeout)
		if err != nil {
			log.Fatalf("Discovery failed: %v", err)
		}
		addr, path = info.Addr(), info.Path
		log.Printf("Found %s at %s", info.Name, addr)
	}

	c := client.NewClient(client.Config{ServerAddr: addr, Path: path})
	if err := c.Connect(); err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer c.Close()

	hello := c.Hello()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "flipit> ",
		HistoryFile:  historyFile(),
		AutoComplete: completer(),
	})
	if err != nil {
		log.Fatalf("Failed to start shell: %v", err)
	}
	defer func() { _ = rl.Close() }()

	log.SetOutput(rl.Stderr())
	out := rl.Stdout()
	fmt.Fprintf(out, "Connected to %s (%s %s). Type help for commands.\n", hello.Name, hello.Product, hello.Software)

	var (
		mu     sync.Mutex
		latest app.State
	)
	go func() {
		var lastStatus string
		for {
			select {
			case st := <-c.States:
				mu.Lock()
				latest = st
				mu.Unlock()
				if !*quiet && st.TransportStatus != lastStatus {
					lastStatus = st.TransportStatus
					fmt.Fprintf(out, "» %s\n", lastStatus)
				}
			case res := <-c.Results:
				if res.OK {
					fmt.Fprintf(out, "✓ %s\n", res.Command)
				} else {
					fmt.Fprintf(out, "✗ %s: %s\n", res.Command, res.Error)
				}
			case <-c.Done():
				fmt.Fprintln(out, "Connection closed")
				_ = rl.Close()
				return
			}
		}
	}()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		}
		if err != nil {
			// io.EOF on ctrl+d, or the shell was closed with the connection
			break
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit", "quit":
			return
		case "help":
			printHelp(out)
			continue
		case "state":
			mu.Lock()
			st := latest
			mu.Unlock()
			printState(out, st)
			continue
		}

		cmd, err := client.ParseLine(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if _, err := c.Send(cmd); err != nil {
			fmt.Fprintf(out, "Send failed: %v\n", err)
		}
	}
}

// discover waits for the first advertised server
func discover(wait time.Duration) (*discovery.ServerInfo, error) {
	mgr := discovery.NewManager(discovery.Config{})
	defer mgr.Stop()

	if err := mgr.Browse(); err != nil {
		return nil, err
	}

	select {
	case info := <-mgr.Servers():
		return info, nil
	case <-time.After(wait):
		return nil, fmt.Errorf("no server found within %s", wait)
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flipit_history")
}

func completer() *readline.PrefixCompleter {
	tracks := func() []readline.PrefixCompleterInterface {
		return []readline.PrefixCompleterInterface{readline.PcItem("A"), readline.PcItem("B")}
	}
	selections := func() []readline.PrefixCompleterInterface {
		var items []readline.PrefixCompleterInterface
		for _, sel := range transport.Selections {
			items = append(items, readline.PcItem(string(sel)))
		}
		return items
	}
	kinds := func() []readline.PrefixCompleterInterface {
		return []readline.PrefixCompleterInterface{readline.PcItem("original"), readline.PcItem("mimic")}
	}

	var sources []readline.PrefixCompleterInterface
	for _, t := range []string{"A", "B"} {
		sources = append(sources, readline.PcItem(t, selections()...))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("play", tracks()...),
		readline.PcItem("pause", tracks()...),
		readline.PcItem("toggle", tracks()...),
		readline.PcItem("stop", tracks()...),
		readline.PcItem("seek", tracks()...),
		readline.PcItem("seekby", tracks()...),
		readline.PcItem("cycle", tracks()...),
		readline.PcItem("source", sources...),
		readline.PcItem("preview", selections()...),
		readline.PcItem("record", kinds()...),
		readline.PcItem("fetch", kinds()...),
		readline.PcItem("stopall"),
		readline.PcItem("stoprecord"),
		readline.PcItem("clear"),
		readline.PcItem("state"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  play|pause|toggle|stop|cycle <A|B>")
	fmt.Fprintln(w, "  seek <A|B> <seconds>       seekby <A|B> <delta>")
	fmt.Fprintln(w, "  source <A|B> <selection>   preview <selection>")
	fmt.Fprintln(w, "  record <original|mimic>    stoprecord")
	fmt.Fprintln(w, "  fetch <original|mimic> <url>")
	fmt.Fprintln(w, "  stopall  clear  state  exit")
	fmt.Fprintf(w, "Selections: %s\n", selectionList())
}

func selectionList() string {
	names := make([]string, len(transport.Selections))
	for i, sel := range transport.Selections {
		names[i] = string(sel)
	}
	return strings.Join(names, ", ")
}

func printState(w io.Writer, st app.State) {
	for _, p := range []app.Panel{st.Original, st.Mimic} {
		fmt.Fprintf(w, "%-8s %-6s %-12s %s\n", p.Kind, p.DurationText, p.Format, p.Status)
	}
	for _, t := range st.Tracks {
		fmt.Fprintf(w, "Track %s  %-16s %-8s %6.2f / %6.2f\n", t.ID, t.Selection, t.State, t.Offset, t.Duration)
	}
	if st.RecordingActive {
		fmt.Fprintf(w, "Recording %s: %.1fs of %ds\n", st.RecordingKind, st.RecordingElapsed, st.MaxSeconds)
	}
	fmt.Fprintln(w, st.TransportStatus)
}
