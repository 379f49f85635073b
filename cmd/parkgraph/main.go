package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/campusworks/parkgraph/pkg/client"
	"github.com/campusworks/parkgraph/pkg/graph"
	"github.com/campusworks/parkgraph/pkg/ingest"
	"github.com/campusworks/parkgraph/pkg/query"
	"github.com/campusworks/parkgraph/pkg/render"
	"github.com/campusworks/parkgraph/pkg/reports"
)

var Version = "v1.0.0"

const usage = `Usage: parkgraph [-url URL | -data FILE] <command>

Commands:
  query <id> [direction]   look up reachable lots or passes
  edges add <pass> <lot>   grant a pass access to a lot
  validate                 report isolated passes and lots
  reload                   rebuild the daemon's graph from its sources
  render [text|dot]        print the graph
  report <name>            print a CSV report (permissions, isolation)
  health                   daemon status

Flags:
  -url URL    daemon endpoint (default http://127.0.0.1:8085, or PARKGRAPH_URL)
  -data FILE  answer from a local CSV dataset instead of a daemon
`

func main() {
	urlDefault := os.Getenv("PARKGRAPH_URL")
	if urlDefault == "" {
		urlDefault = "http://127.0.0.1:8085"
	}
	urlFlag := flag.String("url", urlDefault, "daemon endpoint")
	dataFlag := flag.String("data", "", "local CSV dataset")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	if *dataFlag != "" {
		err = runLocal(ctx, *dataFlag, args)
	} else {
		err = runRemote(ctx, client.NewClient(*urlFlag), args)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runRemote(ctx context.Context, c *client.Client, args []string) error {
	switch args[0] {
	case "query":
		if len(args) < 2 {
			return errors.New("usage: parkgraph query <id> [pass_to_lots|lot_to_passes]")
		}
		var result *client.Result
		var err error
		if len(args) > 2 {
			result, err = c.QueryAs(ctx, args[1], args[2])
		} else {
			result, err = c.Query(ctx, args[1])
		}
		if err != nil {
			if errors.Is(err, client.ErrAmbiguousIdentifier) {
				return fmt.Errorf("%v\nretry with a direction, e.g.: parkgraph query %q pass_to_lots", err, args[1])
			}
			return err
		}
		printMatches(result.Display, result.Direction, result.Matches)
		return nil

	case "edges":
		if len(args) < 4 || args[1] != "add" {
			return errors.New("usage: parkgraph edges add <pass> <lot>")
		}
		if err := c.AddEdge(ctx, args[2], args[3]); err != nil {
			return err
		}
		fmt.Printf("Granted: pass %s -> lot %s\n", args[2], args[3])
		return nil

	case "validate":
		report, err := c.Validate(ctx)
		if err != nil {
			return err
		}
		printValidation(report.Stats.Passes, report.Stats.Lots, report.Stats.Edges,
			report.IsolatedPasses, report.IsolatedLots)
		return nil

	case "reload":
		summary, err := c.Reload(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Reloaded: %d edges, %d skipped, %d duplicates (run %s, %dms)\n",
			summary.Loaded, summary.Skipped, summary.Duplicates, summary.RunID, summary.ElapsedMS)
		return nil

	case "render":
		format := "text"
		if len(args) > 1 {
			format = args[1]
		}
		out, err := c.Render(ctx, format)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil

	case "report":
		if len(args) < 2 {
			return errors.New("usage: parkgraph report <name>")
		}
		out, err := c.Report(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil

	case "health":
		h, err := c.Ping(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Status: %s (%d passes, %d lots, %d edges, version %d)\n",
			h.Status, h.Passes, h.Lots, h.Edges, h.Version)
		return nil

	case "version":
		fmt.Println(Version)
		return nil

	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// runLocal answers read commands from a CSV dataset without a daemon.
func runLocal(ctx context.Context, path string, args []string) error {
	store := graph.NewStore()
	loader := ingest.NewLoader(ingest.NewCSVSource(path))
	if _, err := loader.Load(ctx, store); err != nil {
		return err
	}

	switch args[0] {
	case "query":
		if len(args) < 2 {
			return errors.New("usage: parkgraph -data FILE query <id> [pass_to_lots|lot_to_passes]")
		}
		facade := query.New(store)
		var result *query.Result
		var err error
		if len(args) > 2 {
			dir := query.Direction(args[2])
			if !dir.Valid() {
				return fmt.Errorf("invalid direction: %s", args[2])
			}
			result, err = facade.QueryAs(args[1], dir)
		} else {
			result, err = facade.Query(args[1])
		}
		if err != nil {
			return err
		}
		printMatches(result.Display, string(result.Direction), result.Matches)
		return nil

	case "validate":
		report := store.Validate()
		printValidation(report.Stats.Passes, report.Stats.Lots, report.Stats.Edges,
			report.IsolatedPasses, report.IsolatedLots)
		return nil

	case "render":
		format := "text"
		if len(args) > 1 {
			format = args[1]
		}
		snap := store.Snapshot()
		switch format {
		case "text":
			fmt.Print(render.Text(snap))
		case "dot":
			fmt.Print(render.DOT(snap))
		default:
			return fmt.Errorf("invalid render format: %s", format)
		}
		return nil

	case "report":
		if len(args) < 2 {
			return errors.New("usage: parkgraph -data FILE report <name>")
		}
		gen, err := reports.NewReportGenerator(reports.ReportType(args[1]), store)
		if err != nil {
			return err
		}
		r, err := gen.Generate(ctx, reports.ReportParams{})
		if err != nil {
			return err
		}
		out, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		fmt.Print(string(out))
		return nil

	default:
		return fmt.Errorf("command %q requires a running daemon; drop -data", args[0])
	}
}

func printMatches(display, direction string, matches []string) {
	if direction == client.DirectionPassToLots {
		if len(matches) == 0 {
			fmt.Printf("Pass %s has no lot access.\n", display)
			return
		}
		fmt.Printf("Pass %s can park in: %s\n", display, strings.Join(matches, ", "))
		return
	}
	if len(matches) == 0 {
		fmt.Printf("Lot %s admits no passes.\n", display)
		return
	}
	fmt.Printf("Lot %s admits passes: %s\n", display, strings.Join(matches, ", "))
}

func printValidation(passes, lots, edges int, isolatedPasses, isolatedLots []string) {
	fmt.Printf("passes=%d lots=%d edges=%d\n", passes, lots, edges)
	if len(isolatedPasses) == 0 && len(isolatedLots) == 0 {
		fmt.Println("No isolated nodes.")
		return
	}
	for _, id := range isolatedPasses {
		fmt.Printf("isolated pass: %s\n", id)
	}
	for _, id := range isolatedLots {
		fmt.Printf("isolated lot: %s\n", id)
	}
}
