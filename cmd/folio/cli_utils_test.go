package main

import (
	"flag"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeArgs(t *testing.T) {
	newFS := func() *flag.FlagSet {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.Bool("json", false, "")
		fs.Int("limit", 0, "")
		return fs
	}

	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"flags first", []string{"--json", "python"}, []string{"--json", "python"}},
		{"bool flag after query", []string{"python", "--json"}, []string{"--json", "python"}},
		{"value flag after query", []string{"house", "price", "--limit", "3"}, []string{"--limit", "3", "house", "price"}},
		{"equals syntax", []string{"ml", "--limit=2"}, []string{"--limit=2", "ml"}},
		{"double dash ends flags", []string{"--json", "--", "--weird"}, []string{"--json", "--weird"}},
		{"lone dash is positional", []string{"-"}, []string{"-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeArgs(newFS(), tt.args))
		})
	}
}

func TestColorProfileFromEnv(t *testing.T) {
	tests := []struct {
		in   string
		want termenv.Profile
		ok   bool
	}{
		{"truecolor", termenv.TrueColor, true},
		{"24BIT", termenv.TrueColor, true},
		{"256", termenv.ANSI256, true},
		{"basic", termenv.ANSI, true},
		{" none ", termenv.Ascii, true},
		{"", termenv.Ascii, false},
		{"rainbow", termenv.Ascii, false},
	}
	for _, tt := range tests {
		got, ok := colorProfileFromEnv(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
