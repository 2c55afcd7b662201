package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/mongovc/mongovc/internal/codec"
)

// valueJSON renders a decoded document value as extended JSON, the same
// encoding MongoDB tooling uses so dates, binary and other non-JSON-native
// kinds round-trip legibly.
func valueJSON(v codec.Value) (string, error) {
	data, err := bson.MarshalExtJSON(v.ToBSON(), false, false)
	if err != nil {
		return "", fmt.Errorf("marshal value: %w", err)
	}
	return string(data), nil
}

// newTableWriter returns a go-pretty table styled like the teacher's
// document list output: borderless, column-separated by whitespace only.
func newTableWriter() table.Writer {
	tw := table.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	return tw
}
