// ofquery is a small demonstration CLI for objectfilter, in the spirit
// of the teacher's _examples/file_finder: parse a query, load a JSON
// object from disk, and report whether the query matches it.
//
// Usage:
//
//	ofquery --data object.json "Name == 'a.txt' and Size > 10"
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/Velocidex/ordereddict"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/google/objectfilter"
	"github.com/google/objectfilter/explain"
	"github.com/google/objectfilter/filters"
)

var (
	dataPath = kingpin.Flag("data", "Path to a JSON file holding the object to test.").
			Required().String()
	explainFlag = kingpin.Flag("explain", "Log each sub-expression's verdict as the query evaluates.").
			Bool()
	query = kingpin.Arg("query", "The objectfilter query to evaluate.").Required().String()
)

// cliLogger adapts the standard library logger to objectfilter.Logger.
type cliLogger struct{ *log.Logger }

func (l cliLogger) Log(format string, args ...interface{})   { l.Printf(format, args...) }
func (l cliLogger) Trace(format string, args ...interface{}) { l.Printf(format, args...) }

func main() {
	kingpin.Parse()

	raw, err := os.ReadFile(*dataPath)
	if err != nil {
		kingpin.FatalIfError(err, "reading %s", *dataPath)
	}

	// Decoded into an ordereddict.Dict, not a plain map[string]interface{},
	// so member resolution follows the declaration order preserved by
	// objectfilter/resolver's ordereddict special case rather than Go's
	// unspecified map iteration order.
	object := ordereddict.NewDict()
	if err := json.Unmarshal(raw, object); err != nil {
		kingpin.FatalIfError(err, "parsing %s as JSON", *dataPath)
	}

	logger := cliLogger{log.New(os.Stderr, "", 0)}
	engine := objectfilter.NewEngine(logger)
	node, err := engine.Compile(*query)
	if err != nil {
		kingpin.FatalIfError(err, "compiling query")
	}

	var traced filters.Node = node
	if *explainFlag {
		traced = explain.Wrap(node, logger)
	}

	matched := traced.Matches(context.Background(), object)
	fmt.Println(matched)
	if !matched {
		os.Exit(1)
	}
}
