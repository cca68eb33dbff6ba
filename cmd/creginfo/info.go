package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/joshuapare/creg/pkg/creg"
)

type hiveSummary struct {
	Path         string `json:"path"`
	MajorVersion uint16 `json:"major_version"`
	MinorVersion uint16 `json:"minor_version"`
	Corrupted    bool   `json:"corrupted"`
}

func runInfo(hivePath string) error {
	printVerbose("Opening hive: %s\n", hivePath)

	f, err := creg.Open(hivePath, creg.OpenOptions{Codepage: codepage})
	var cerr *creg.Error
	if errors.As(err, &cerr) && cerr.Kind == creg.ErrKindUnsupportedCodepage {
		fmt.Fprintf(os.Stderr, "Warning: unsupported codepage %q, using windows-1252\n", codepage)
		f, err = creg.Open(hivePath, creg.OpenOptions{Codepage: "windows-1252"})
	}
	if err != nil {
		return fmt.Errorf("opening hive: %w", err)
	}
	defer f.Close()

	major, minor := f.GetFormatVersion()
	summary := hiveSummary{
		Path:         hivePath,
		MajorVersion: major,
		MinorVersion: minor,
		Corrupted:    f.IsCorrupted(),
	}

	if jsonOut {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(summary); err != nil {
			return err
		}
	} else {
		fmt.Printf("Hive: %s\n", summary.Path)
		fmt.Printf("Format version: %d.%d\n", summary.MajorVersion, summary.MinorVersion)
		fmt.Printf("Corrupted: %t\n", summary.Corrupted)
	}

	if dumpTree {
		root, err := f.GetRootKey()
		if err != nil {
			return fmt.Errorf("opening root key: %w", err)
		}
		fmt.Println()
		return printTree(root, 0)
	}
	return nil
}

// printTree indents by depth and marks keys holding values with "(values)",
// the same shape original_source's recursive dump uses.
func printTree(k *creg.Key, depth int) error {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	name := k.Name()
	if name == "" && depth == 0 {
		name = "(root)"
	}
	fmt.Printf("%s%s\n", indent, name)

	if k.ValueCount() > 0 {
		fmt.Printf("%s  (values)\n", indent)
		for i := 0; i < k.ValueCount(); i++ {
			v, err := k.ValueByIndex(i)
			if err != nil {
				return err
			}
			valueName := v.Name()
			if valueName == "" {
				valueName = "(default)"
			}
			fmt.Printf("%s    %s [%s]\n", indent, valueName, v.Type())
		}
	}

	for i := 0; i < k.ChildCount(); i++ {
		child, err := k.ChildByIndex(i)
		if err != nil {
			return err
		}
		if err := printTree(child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
