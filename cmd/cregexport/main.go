// Command cregexport writes a .reg-style text dump of a Windows 9x/Me
// registry hive, or of one subtree when -K is given.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/creg/pkg/creg"
)

var (
	codepage  string
	subKey    string
	logfile   string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:     "cregexport <hive>",
	Short:   "Export a CREG hive, or one subtree, as .reg-style text",
	Version: "0.1.0",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(args[0])
	},
}

func init() {
	rootCmd.Flags().StringVarP(&codepage, "codepage", "c", "", "codepage to decode names/strings with (default windows-1252)")
	rootCmd.Flags().StringVarP(&subKey, "key", "K", "", "export only this subtree, given as a \\-separated path")
	rootCmd.Flags().StringVarP(&logfile, "log", "l", "", "append export diagnostics to this file instead of stderr")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runExport(hivePath string) error {
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

	root, err := f.GetRootKey()
	if err != nil {
		return fmt.Errorf("opening root key: %w", err)
	}

	start := root
	path := "\\"
	if subKey != "" {
		k, ok, err := root.ChildByPath(subKey)
		if err != nil {
			return fmt.Errorf("resolving %q: %w", subKey, err)
		}
		if !ok {
			return fmt.Errorf("key not found: %q", subKey)
		}
		start = k
		path = subKey
	}

	logOut := os.Stderr
	if logfile != "" {
		lf, err := os.OpenFile(logfile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer lf.Close()
		logOut = lf
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	fmt.Fprintln(w, "Windows Registry Editor Version 5.00")
	fmt.Fprintln(w)
	return exportTree(w, logOut, start, path)
}

func exportTree(w *bufio.Writer, logOut *os.File, k *creg.Key, path string) error {
	fmt.Fprintf(w, "[%s]\n", path)

	for i := 0; i < k.ValueCount(); i++ {
		v, err := k.ValueByIndex(i)
		if err != nil {
			fmt.Fprintf(logOut, "value %d of %q: %v\n", i, path, err)
			continue
		}
		writeValueLine(w, v)
	}
	fmt.Fprintln(w)

	for i := 0; i < k.ChildCount(); i++ {
		child, err := k.ChildByIndex(i)
		if err != nil {
			fmt.Fprintf(logOut, "child %d of %q: %v\n", i, path, err)
			continue
		}
		childPath := path
		if childPath != "\\" {
			childPath += "\\"
		}
		childPath += child.Name()
		if err := exportTree(w, logOut, child, childPath); err != nil {
			return err
		}
	}
	return nil
}

func writeValueLine(w *bufio.Writer, v *creg.Value) {
	name := v.Name()
	label := fmt.Sprintf("%q", name)
	if name == "" {
		label = "@"
	}

	switch v.Type() {
	case creg.RegSZ, creg.RegExpandSZ, creg.RegLink:
		s, err := v.UTF8String()
		if err != nil {
			fmt.Fprintf(w, "%s=hex(0):%x\n", label, v.Data())
			return
		}
		fmt.Fprintf(w, "%s=%q\n", label, s)
	case creg.RegDWORD:
		n, _ := v.AsU32()
		fmt.Fprintf(w, "%s=dword:%08x\n", label, n)
	default:
		fmt.Fprintf(w, "%s=hex(%d):%x\n", label, uint32(v.Type()), v.Data())
	}
}
