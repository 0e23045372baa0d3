package main

import (
	"os"
	"testing"
)

func TestFlagParsing(t *testing.T) {

	os.Args = []string{"prog", "-s", "testdata/settings.toml"}
	args, settingsPath, err := parseFlags()
	if err != nil {
		t.Errorf("failed flag parsing %s", err)
	}
	if settingsPath != "testdata/settings.toml" {
		t.Errorf("unexpected settings path %s", settingsPath)
	}
	if args.dumpFile != os.Stdin {
		t.Error("input should default to stdin")
	}
	if args.output != os.Stdout {
		t.Error("output should default to stdout")
	}
}

func TestFlagParsingFail(t *testing.T) {

	os.Args = []string{"prog", "-s", "testdata/settings.toml", "/xyz/unlikely.name"}
	_, _, err := parseFlags()
	if err == nil {
		t.Errorf("flag parsing should have failed %s", err)
	}
	t.Log(err)
}
