// Command ribbon is the CLI surface the core exposes for an outer
// collaborator to drive (spec §6): namespace inspection and editing,
// version tagging/compatibility, outdated-reference reporting, and the
// filesystem bridge. The textual surface syntax, REPL, and LSP transport
// are explicitly out of scope for the core (spec §1) — this binary only
// wires cobra commands onto the library packages; it never parses a
// source language itself, only the bridge's minimal s-expression form.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"github.com/ribbonlang/ribbon/internal/ast"
	"github.com/ribbonlang/ribbon/internal/bridge"
	"github.com/ribbonlang/ribbon/internal/config"
	"github.com/ribbonlang/ribbon/internal/editor"
	"github.com/ribbonlang/ribbon/internal/hash"
	"github.com/ribbonlang/ribbon/internal/namespace"
	"github.com/ribbonlang/ribbon/internal/namespace/storage"
	"github.com/ribbonlang/ribbon/internal/semver"
	"github.com/ribbonlang/ribbon/internal/symbol"
)

// Exit codes (spec §6): 0 success, 1 user error, 2 integrity error, 3
// internal error.
const (
	exitOK        = 0
	exitUser      = 1
	exitIntegrity = 2
	exitInternal  = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "ribbon: %v\n", err)
		return exitInternal
	}

	root := newRootCmd(cfg)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ribbon: %v\n", err)
		return exitCodeFor(err)
	}
	return exitOK
}

// userError marks an error as a spec §6 exit-code-1 condition (bad path,
// unsatisfiable version constraint) rather than an internal failure.
type userError struct{ err error }

func (u *userError) Error() string { return u.err.Error() }
func (u *userError) Unwrap() error { return u.err }

func userErrorf(format string, args ...any) error {
	return &userError{err: fmt.Errorf(format, args...)}
}

// integrityError marks an error as a spec §6 exit-code-2 condition (a
// corrupt store or binary container failing its integrity footer check).
type integrityError struct{ err error }

func (i *integrityError) Error() string { return i.err.Error() }
func (i *integrityError) Unwrap() error { return i.err }

func exitCodeFor(err error) int {
	var u *userError
	var i *integrityError
	var noSat *semver.NoSatisfyingVersion
	var ambig *semver.AmbiguousResolution
	var unknownTag *namespace.UnknownTag
	switch {
	case errors.As(err, &u), errors.As(err, &noSat), errors.As(err, &ambig), errors.As(err, &unknownTag):
		return exitUser
	case errors.As(err, &i):
		return exitIntegrity
	default:
		return exitInternal
	}
}

// env bundles the process-wide state every command needs: the symbol
// registry and hasher paths are resolved/hashed against, and the
// database connection the namespace Store is persisted through (spec
// §4.G's Store plus internal/namespace/storage's GORM-backed sidecar).
type env struct {
	reg   *symbol.Registry
	hash  *hash.Hasher
	store *namespace.Store
	db    *gorm.DB
}

func (e *env) codec() storage.Codec {
	return storage.Codec{
		Encode: func(n *ast.Node) (string, error) { return bridge.Print(e.reg, n) },
		Decode: func(s string) (*ast.Node, error) { return bridge.Parse(e.reg, s) },
	}
}

func openEnv(dsn string) (*env, error) {
	db, err := storage.Connect(dsn, false)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	reg := symbol.New()
	h := hash.New(reg)
	e := &env{reg: reg, hash: h, store: namespace.New(reg, h), db: db}
	if err := storage.Load(context.Background(), db, e.store, e.codec()); err != nil {
		return nil, &integrityError{err: fmt.Errorf("load store: %w", err)}
	}
	return e, nil
}

func (e *env) save() error {
	if err := storage.Save(context.Background(), e.db, e.store, e.codec()); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	return nil
}

func currentAuthor() string {
	if u := os.Getenv("RIBBON_AUTHOR"); u != "" {
		return u
	}
	return "cli"
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var dbPath string

	root := &cobra.Command{
		Use:           "ribbon",
		Short:         "Content-addressed namespace store for the ribbon toolchain",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	bindStoreFlags(root.PersistentFlags(), &dbPath, cfg.DSN)

	root.AddCommand(
		newNamespaceCmd(&dbPath),
		newVersionCmd(&dbPath),
		newOutdatedCmd(&dbPath),
		newHashCmd(),
	)
	return root
}

// bindStoreFlags registers the store-selection flags on fs. Split out of
// newRootCmd so tests can bind the same flags onto a throwaway FlagSet
// without building the whole command tree.
func bindStoreFlags(fs *pflag.FlagSet, dbPath *string, defaultDSN string) {
	fs.StringVar(dbPath, "db", defaultDSN, "path to the namespace store's database (sqlite or postgres DSN)")
}

// --- namespace ------------------------------------------------------------

func newNamespaceCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{Use: "namespace", Short: "Inspect and edit the namespace tree"}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <path>[#hash]",
		Short: "List children of a namespace, or show a definition's current or historical version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dbPath)
			if err != nil {
				return err
			}
			return namespaceShow(e, args[0], cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "edit <path>",
		Short: "Begin an editing session for a definition and report its inferred type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dbPath)
			if err != nil {
				return err
			}
			return namespaceEdit(e, args[0], cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "log <path>",
		Short: "Show a definition's version history, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dbPath)
			if err != nil {
				return err
			}
			return namespaceLog(e, args[0], cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export <path> <dir>",
		Short: "Materialize a namespace subtree to a filesystem directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dbPath)
			if err != nil {
				return err
			}
			path, err := namespace.ParsePath(e.reg, args[0])
			if err != nil {
				return userErrorf("%w", err)
			}
			if err := bridge.Export(e.reg, e.store, path, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", args[0], args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <dir> <path>",
		Short: "Re-ingest a filesystem directory's definitions under a namespace path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dbPath)
			if err != nil {
				return err
			}
			target, err := namespace.ParsePath(e.reg, args[1])
			if err != nil {
				return userErrorf("%w", err)
			}
			versions, err := bridge.Import(e.reg, e.store, args[0], target, currentAuthor())
			if err != nil {
				return err
			}
			if err := e.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d definition(s) into %s\n", len(versions), args[1])
			return nil
		},
	})

	return cmd
}

func namespaceShow(e *env, arg string, out io.Writer) error {
	pathStr, hashPart, hasHash := strings.Cut(arg, "#")
	path, err := namespace.ParsePath(e.reg, pathStr)
	if err != nil {
		return userErrorf("%w", err)
	}

	if hasHash {
		def, ok := e.store.Definition(path)
		if !ok {
			return userErrorf("no definition at %s", pathStr)
		}
		v, ok := findByShortHash(def, hashPart)
		if !ok {
			return userErrorf("%s has no version matching hash %q", pathStr, hashPart)
		}
		text, err := bridge.Print(e.reg, v.AST)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s#%s (%s)\n%s\n", pathStr, hash.ShortDefinition(v.Hash), v.Timestamp.Format(time.RFC3339), text)
		return nil
	}

	if children, ok := e.store.Children(path); ok {
		for _, c := range children {
			marker := ""
			if c.IsNamespace {
				marker = "/"
			}
			fmt.Fprintf(out, "%s%s\n", c.Name, marker)
		}
		return nil
	}

	def, ok := e.store.Definition(path)
	if !ok {
		return userErrorf("no namespace or definition at %s", pathStr)
	}
	head := def.Head()
	if head == nil {
		return userErrorf("%s has never been committed", pathStr)
	}
	fmt.Fprintf(out, "%s#%s\n", pathStr, hash.ShortDefinition(head.Hash))
	return nil
}

func findByShortHash(def *namespace.Definition, short string) (*namespace.Version, bool) {
	for _, v := range def.History {
		if hash.ShortDefinition(v.Hash) == short || hex.EncodeToString(v.Hash[:]) == short {
			return v, true
		}
	}
	return nil, false
}

func namespaceEdit(e *env, pathStr string, out io.Writer) error {
	path, err := namespace.ParsePath(e.reg, pathStr)
	if err != nil {
		return userErrorf("%w", err)
	}
	def, ok := e.store.Definition(path)
	if !ok {
		return userErrorf("no definition at %s", pathStr)
	}
	head := def.Head()
	if head == nil {
		return userErrorf("%s has never been committed", pathStr)
	}

	sess := editor.NewSession(e.reg, head.AST, currentAuthor())
	typ, effs, diags := sess.Checker().Check(sess.Root(), sess.Scope)

	fmt.Fprintf(out, "opened editing session %s for %s#%s\n", sess.ID, pathStr, hash.ShortDefinition(head.Hash))
	if typ != nil {
		fmt.Fprintf(out, "type: %s\n", typ)
	}
	if !effs.Empty() {
		fmt.Fprintf(out, "effects: %s\n", effs)
	}
	for _, d := range diags {
		fmt.Fprintf(out, "%s\n", d.Error())
	}
	return nil
}

func namespaceLog(e *env, pathStr string, out io.Writer) error {
	path, err := namespace.ParsePath(e.reg, pathStr)
	if err != nil {
		return userErrorf("%w", err)
	}
	def, ok := e.store.Definition(path)
	if !ok {
		return userErrorf("no definition at %s", pathStr)
	}
	for i := len(def.History) - 1; i >= 0; i-- {
		v := def.History[i]
		fmt.Fprintf(out, "%s#%s  %s  %s  %s\n", pathStr, hash.ShortDefinition(v.Hash), v.Timestamp.Format(time.RFC3339), v.Author, v.Message)
	}
	return nil
}

// --- version ---------------------------------------------------------------

func newVersionCmd(dbPath *string) *cobra.Command {
	cmd := &cobra.Command{Use: "version", Short: "Inspect and tag definition versions"}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <path>",
		Short: "Show a definition's current head version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dbPath)
			if err != nil {
				return err
			}
			path, err := namespace.ParsePath(e.reg, args[0])
			if err != nil {
				return userErrorf("%w", err)
			}
			def, ok := e.store.Definition(path)
			if !ok {
				return userErrorf("no definition at %s", args[0])
			}
			head := def.Head()
			if head == nil {
				return userErrorf("%s has never been committed", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s#%s  %s  %s  %s\n", args[0], hash.ShortDefinition(head.Hash), head.Timestamp.Format(time.RFC3339), head.Author, head.Message)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "tag <path> <semver>",
		Short: "Attach an immutable SemVer label to a definition's current head",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dbPath)
			if err != nil {
				return err
			}
			path, err := namespace.ParsePath(e.reg, args[0])
			if err != nil {
				return userErrorf("%w", err)
			}
			if err := e.store.TagImmutable(path, args[1]); err != nil {
				return userErrorf("%w", err)
			}
			if err := e.save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tagged %s@%s\n", args[0], args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check <path> <v1> <v2>",
		Short: "Classify the compatibility of v2 relative to v1 (patch/minor/major)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dbPath)
			if err != nil {
				return err
			}
			path, err := namespace.ParsePath(e.reg, args[0])
			if err != nil {
				return userErrorf("%w", err)
			}
			def, ok := e.store.Definition(path)
			if !ok {
				return userErrorf("no definition at %s", args[0])
			}
			v1, err := resolveVersionArg(e, path, def, args[1])
			if err != nil {
				return err
			}
			v2, err := resolveVersionArg(e, path, def, args[2])
			if err != nil {
				return err
			}
			report, err := namespace.CompatibilityCheck(e.hash, v1, v2)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s: %s\n", args[0], args[1], args[2], report.Level)
			for _, d := range report.Diff {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s -> %s\n", d.Path, d.Old, d.New)
			}
			return printVersionDiff(cmd.OutOrStdout(), e, args[0], v1, args[1], v2, args[2])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "deps <path>",
		Short: "List the content hashes a definition's current head directly depends on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dbPath)
			if err != nil {
				return err
			}
			path, err := namespace.ParsePath(e.reg, args[0])
			if err != nil {
				return userErrorf("%w", err)
			}
			def, ok := e.store.Definition(path)
			if !ok {
				return userErrorf("no definition at %s", args[0])
			}
			head := def.Head()
			if head == nil {
				return userErrorf("%s has never been committed", args[0])
			}
			for h := range head.Deps {
				dep, ok := e.store.ByHash(h)
				label := hash.ShortDefinition(h)
				if ok {
					label = dep.Path.String(e.reg) + "#" + label
				}
				fmt.Fprintln(cmd.OutOrStdout(), label)
			}
			return nil
		},
	})

	return cmd
}

// printVersionDiff renders a unified diff of the two versions' canonical
// textual forms under the compatibility verdict, so "major" comes with
// the exact subtree that broke. A diff that fails to print is not an
// error — the verdict above it already answered the question.
func printVersionDiff(out io.Writer, e *env, path string, v1 *namespace.Version, label1 string, v2 *namespace.Version, label2 string) error {
	oldText, err := bridge.Print(e.reg, v1.AST)
	if err != nil {
		return nil
	}
	newText, err := bridge.Print(e.reg, v2.AST)
	if err != nil {
		return nil
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: path + "@" + label1,
		ToFile:   path + "@" + label2,
		Context:  2,
	})
	if err == nil && text != "" {
		fmt.Fprint(out, text)
	}
	return nil
}

// resolveVersionArg accepts either a tag label (resolved via ResolveTag)
// or a short/full hex content hash naming a version already in def's
// history.
func resolveVersionArg(e *env, path namespace.Path, def *namespace.Definition, arg string) (*namespace.Version, error) {
	if v, ok := findByShortHash(def, arg); ok {
		return v, nil
	}
	h, err := e.store.ResolveTag(path, arg)
	if err != nil {
		return nil, userErrorf("%w", err)
	}
	v, ok := def.VersionByHash(h)
	if !ok {
		return nil, userErrorf("tag %s@%s resolved to a hash with no matching version", path.String(e.reg), arg)
	}
	return v, nil
}

// --- outdated ---------------------------------------------------------------

func newOutdatedCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "outdated",
		Short: "Report definitions whose recorded dependency hash is no longer the head of what they depend on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dbPath)
			if err != nil {
				return err
			}
			report := e.store.OutdatedReport()
			for _, ref := range report {
				fmt.Fprintf(cmd.OutOrStdout(), "%s depends on %s#%s, but its head is now #%s\n",
					ref.Dependent.Path.String(e.reg),
					ref.DependencyOn.Path.String(e.reg),
					hash.ShortDefinition(ref.RecordedHash),
					hash.ShortDefinition(ref.CurrentHash))
			}
			if len(report) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing outdated")
			}
			return nil
		},
	}
}

// --- hash --------------------------------------------------------------------

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>",
		Short: "Print the content hash of every definition in a bridge (.x) file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return userErrorf("%w", err)
			}
			if len(data) >= 4 && data[0] == hash.Magic[0] && data[1] == hash.Magic[1] && data[2] == hash.Magic[2] && data[3] == hash.Magic[3] {
				if _, _, err := hash.VerifyUnit(data); err != nil {
					return &integrityError{err: err}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "container integrity verified")
				return nil
			}

			reg := symbol.New()
			node, err := bridge.Parse(reg, string(data))
			if err != nil {
				return userErrorf("%w", err)
			}
			h := hash.New(reg)
			printHashes(cmd.OutOrStdout(), h, reg, node)
			return nil
		},
	}
}

func printHashes(out io.Writer, h *hash.Hasher, reg *symbol.Registry, n *ast.Node) {
	if n == nil {
		return
	}
	if n.Kind().IsDefinition() {
		d, err := hash.DefinitionHash(h, n)
		if err == nil {
			name := "<unnamed>"
			if sym, ok := ast.SymbolOf(n); ok {
				name = reg.MustName(sym)
			}
			fmt.Fprintf(out, "%s#%s\n", name, hash.ShortDefinition(d))
		}
	}
	for _, c := range n.Children() {
		printHashes(out, h, reg, c)
	}
}
