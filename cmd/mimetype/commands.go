package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gobeaver/mimekit"
	"github.com/gobeaver/mimekit/internal/logging"
)

// NewRootCmd builds the mimetype command tree.
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		defs      []string
		system    bool
		noBuiltin bool
		db        *mimekit.Database
	)

	rootCmd := &cobra.Command{
		Use:   "mimetype",
		Short: "Identify file types from names and content",
		Long: `mimetype identifies files with freedesktop.org shared-mime-info
definitions: the embedded set, extra definition files given with --defs,
and optionally the definitions installed on this system.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(cmd.ErrOrStderr(), logging.VerbosityLevel(verbosity))
			opts := []mimekit.Option{
				mimekit.WithLogger(log),
				mimekit.WithDefinitionFiles(defs...),
			}
			if system {
				opts = append(opts, mimekit.WithSystemDefinitions())
			}
			if noBuiltin {
				opts = append(opts, mimekit.WithoutBuiltin())
			}
			db = mimekit.New(opts...)
			if err := db.EnsureLoaded(); err != nil {
				log.Warn().Err(err).Msg("some definitions were not loaded")
			}
			log.Debug().Str("command", cmd.Name()).Msg("command started")
			return nil
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv, -vvv)")
	rootCmd.PersistentFlags().StringSliceVar(&defs, "defs", nil, "additional definition files")
	rootCmd.PersistentFlags().BoolVar(&system, "system", false, "load the definitions installed on this system")
	rootCmd.PersistentFlags().BoolVar(&noBuiltin, "no-builtin", false, "skip the embedded definitions")

	dbFn := func() *mimekit.Database { return db }
	rootCmd.AddCommand(newDetectCmd(dbFn))
	rootCmd.AddCommand(newInfoCmd(dbFn))
	rootCmd.AddCommand(newListCmd(dbFn))
	return rootCmd
}

func newDetectCmd(db func() *mimekit.Database) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "detect FILE...",
		Short: "Print the type of each file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mimekit.ParseMatchMode(mode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range args {
				if path == "-" {
					t, accuracy, err := db().TypeForReader(cmd.InOrStdin())
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "-: %s (%d)\n", t.Name(), accuracy)
					continue
				}
				t, accuracy := db().MatchFile(path, m)
				fmt.Fprintf(out, "%s: %s (%d)\n", path, t.Name(), accuracy)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "default", "match mode: default, extension or content")
	return cmd
}

func newInfoCmd(db func() *mimekit.Database) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "info TYPE",
		Short: "Describe a mime type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := db().TypeForName(args[0])
			if !t.IsValid() {
				return fmt.Errorf("%w: %s", mimekit.ErrNotFound, args[0])
			}
			printInfo(cmd.OutOrStdout(), t, lang)
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", os.Getenv("LANG"), "language of the comment")
	return cmd
}

func printInfo(w io.Writer, t mimekit.MimeType, lang string) {
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%-14s %s\n", label+":", value)
		}
	}
	row("Name", t.Name())
	row("Comment", t.LocalizedComment(lang))
	row("Icon", t.IconName())
	row("Generic icon", t.GenericIconName())
	row("Aliases", strings.Join(t.Aliases(), ", "))
	row("Globs", strings.Join(t.GlobPatterns(), " "))
	row("Parents", strings.Join(t.ParentMimeTypes(), ", "))
	row("Ancestors", strings.Join(t.AllAncestors(), ", "))
}

func newListCmd(db func() *mimekit.Database) *cobra.Command {
	var (
		withComments bool
		inherits     string
		suffix       string
	)

	cmd := &cobra.Command{
		Use:   "list [PATTERN]",
		Short: "List known mime types",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			var sel []mimekit.TypeSelector
			if len(args) == 1 {
				if strings.ContainsAny(args[0], "*?[") {
					sel = append(sel, mimekit.NameGlob(args[0]))
				} else {
					sel = append(sel, mimekit.NamePrefix(args[0]))
				}
			}
			if inherits != "" {
				sel = append(sel, mimekit.InheritsFrom(db().TypeForName(inherits).Name()))
			}
			if suffix != "" {
				sel = append(sel, mimekit.WithSuffix(suffix))
			}
			for _, t := range db().SelectTypes(mimekit.And(sel...)) {
				if withComments {
					fmt.Fprintf(out, "%s\t%s\n", t.Name(), t.Comment())
				} else {
					fmt.Fprintln(out, t.Name())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&withComments, "comments", "c", false, "show comments")
	cmd.Flags().StringVar(&inherits, "inherits", "", "only types deriving from this type")
	cmd.Flags().StringVar(&suffix, "suffix", "", "only types using this file suffix")
	return cmd
}
