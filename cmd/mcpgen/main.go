// Command mcpgen regenerates the dispatch code of the weather server.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/nimbus-tools/weather-mcp/codegen"
	"github.com/nimbus-tools/weather-mcp/weather"
)

func main() {
	out := flag.String("o", "weather/mcp.gen.go", "output file")
	flag.Parse()

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := codegen.Generate(f, weather.ServerDefinition(), "weather"); err != nil {
		log.Fatalf("failed to generate code: %v", err)
	}
}
