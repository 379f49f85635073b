package main

import (
	"fmt"
	"os"

	"github.com/campusworks/parkgraph/pkg/mcp"
)

func main() {
	url := os.Getenv("PARKGRAPH_URL")
	if url == "" {
		url = "http://127.0.0.1:8085"
	}

	// stdout carries the MCP protocol; logs go to stderr.
	fmt.Fprintf(os.Stderr, `{"level":"info","msg":"mcp_started","api":"%s"}`+"\n", url)

	s := mcp.NewServer(url)
	if err := s.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, `{"level":"fatal","msg":"mcp_failed","error":%q}`+"\n", err.Error())
		os.Exit(1)
	}
}
