// Command richacl inspects and edits richacl-format access control
// lists: getting, setting, and modifying the system.richacl xattr on
// files, and checking what a given principal would be allowed to do.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/richacl/richacl"
	"github.com/richacl/richacl/idresolve"
)

var log = logrus.New()

func main() {
	if os.Getenv("RICHACL_DEBUG") != "" {
		log.SetLevel(logrus.DebugLevel)
	}

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if ec, ok := err.(*exitCodeError); ok {
			os.Exit(ec.code)
		}
		fmt.Fprintf(os.Stderr, "richacl: %v\n", err)
		os.Exit(2)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "richacl",
		Short:         "Inspect and edit richacl access control lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newGetCmd(),
		newSetCmd(),
		newSetFileCmd(),
		newModifyCmd(),
		newModifyFileCmd(),
		newRemoveCmd(),
		newAccessCmd(),
	)
	return root
}

func newGetCmd() *cobra.Command {
	var numericIDs, align bool
	cmd := &cobra.Command{
		Use:   "get <path>...",
		Short: "Print the richacl on each path in text form",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnEachPath(cmd, args, func(path string) error {
				acl, err := getACL(path)
				if err != nil {
					return err
				}
				format := richacl.TextFormat{NumericIDs: numericIDs, Align: align}
				fmt.Print(richacl.ToText(acl, format, idresolve.New()))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&numericIDs, "numeric-ids", "n", false, "print uids/gids instead of resolved names")
	cmd.Flags().BoolVar(&align, "align", false, "right-justify who fields to a common column")
	return cmd
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <text> <path>...",
		Short: "Replace the richacl on each path with one parsed from text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			acl, err := richacl.FromText(args[0], idresolve.New())
			if err != nil {
				return err
			}
			return runOnEachPath(cmd, args[1:], func(path string) error {
				return setACL(path, acl)
			})
		},
	}
	return cmd
}

func newSetFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-file <text-file> <path>...",
		Short: "Like set, but read the acl text from a file (- for stdin)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTextFile(args[0])
			if err != nil {
				return err
			}
			acl, err := richacl.FromText(text, idresolve.New())
			if err != nil {
				return err
			}
			return runOnEachPath(cmd, args[1:], func(path string) error {
				return setACL(path, acl)
			})
		},
	}
	return cmd
}

func newModifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modify <text> <path>...",
		Short: "Merge entries parsed from text into each path's richacl",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnEachPath(cmd, args[1:], func(path string) error {
				return modifyACL(path, args[0])
			})
		},
	}
	return cmd
}

func newModifyFileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modify-file <text-file> <path>...",
		Short: "Like modify, but read the acl text from a file (- for stdin)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTextFile(args[0])
			if err != nil {
				return err
			}
			return runOnEachPath(cmd, args[1:], func(path string) error {
				return modifyACL(path, text)
			})
		},
	}
	return cmd
}

func modifyACL(path, text string) error {
	existing, err := getACL(path)
	if err != nil {
		return err
	}
	additions, err := richacl.FromText(text, idresolve.New())
	if err != nil {
		return err
	}
	existing.Entries = mergeEntries(existing.Entries, additions.Entries)
	existing.OwnerMask |= additions.OwnerMask
	existing.GroupMask |= additions.GroupMask
	existing.OtherMask |= additions.OtherMask
	return setACL(path, existing)
}

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <path>...",
		Short: "Remove the richacl from each path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnEachPath(cmd, args, removeACL)
		},
	}
	return cmd
}

func newAccessCmd() *cobra.Command {
	var uid uint32
	var gids string
	cmd := &cobra.Command{
		Use:   "access <mask> <path>...",
		Short: "Report whether uid would be granted every permission in mask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := parseAccessMask(args[0])
			if err != nil {
				return err
			}
			gidList, err := parseUint32List(gids)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("uid") {
				uid = uint32(os.Getuid())
			}
			if !cmd.Flags().Changed("gids") {
				groups, err := os.Getgroups()
				if err != nil {
					return err
				}
				for _, g := range groups {
					gidList = append(gidList, uint32(g))
				}
			}
			return runOnEachPath(cmd, args[1:], func(path string) error {
				granted, err := checkAccess(path, uid, gidList, mask)
				if err != nil {
					return err
				}
				if !granted {
					return &exitCodeError{code: 1}
				}
				return nil
			})
		},
	}
	cmd.Flags().Uint32Var(&uid, "uid", 0, "uid to evaluate access for (default: the caller's uid)")
	cmd.Flags().StringVar(&gids, "gids", "", "comma separated supplementary gids (default: the caller's groups)")
	return cmd
}

func parseAccessMask(s string) (richacl.Mask, error) {
	mask, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid access mask %q: %w", s, err)
	}
	return richacl.Mask(mask), nil
}

func parseUint32List(s string) ([]uint32, error) {
	if s == "" {
		return nil, nil
	}
	var out []uint32
	for _, tok := range strings.Split(s, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(tok), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid gid %q: %w", tok, err)
		}
		out = append(out, uint32(n))
	}
	return out, nil
}

// exitCodeError carries a specific process exit code up through
// cobra's RunE without printing an error message of its own; the
// "access denied" case is an ordinary program result, not a failure
// worth logging.
type exitCodeError struct{ code int }

func (e *exitCodeError) Error() string { return "" }

func readTextFile(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func runOnEachPath(cmd *cobra.Command, paths []string, fn func(path string) error) error {
	var failures int
	var denied bool
	for _, path := range paths {
		log.Debugf("processing %s", path)
		if err := fn(path); err != nil {
			if ec, ok := err.(*exitCodeError); ok && ec.code == 1 {
				denied = true
				continue
			}
			fmt.Fprintf(os.Stderr, "richacl: %s: %v\n", path, err)
			failures++
		}
	}
	if failures > 0 {
		return &exitCodeError{code: 1}
	}
	if denied {
		return &exitCodeError{code: 1}
	}
	return nil
}
