package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aiverify/aivctl/cmd/aivctl/internal/styles"
	"github.com/aiverify/aivctl/pkg/catalog"
	"github.com/aiverify/aivctl/pkg/portal"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	listSearch  string
	listKinds   []string
	listTags    []string
	listSort    string
	listDesc    bool
	listOffline bool

	showRaw bool

	deleteYes bool
)

var pluginsCmd = &cobra.Command{
	Use:     "plugins",
	Aliases: []string{"plugin"},
	Short:   "Manage the plugins installed on the portal",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Search plugins and their components",
	Long: `Lists installed plugins followed by their algorithms, widgets, input blocks
and templates. --search fuzzy-matches names, tags and descriptions.`,
	Args: cobra.NoArgs,
	RunE: runPluginsList,
}

var pluginsShowCmd = &cobra.Command{
	Use:   "show <gid>",
	Short: "Describe one plugin",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginsShow,
}

var pluginsUploadCmd = &cobra.Command{
	Use:   "upload <zip>",
	Short: "Install a plugin archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginsUpload,
}

var pluginsDeleteCmd = &cobra.Command{
	Use:   "delete <gid>",
	Short: "Uninstall a plugin",
	Args:  cobra.ExactArgs(1),
	RunE:  runPluginsDelete,
}

var pluginsDepsCmd = &cobra.Command{
	Use:   "deps <requirement>...",
	Short: "Check Python requirements against the test engine",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPluginsDeps,
}

func init() {
	pluginsListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Fuzzy search text")
	pluginsListCmd.Flags().StringSliceVarP(&listKinds, "kind", "k", nil, "Only these kinds (plugin, algorithm, widget, inputBlock, template)")
	pluginsListCmd.Flags().StringSliceVarP(&listTags, "tag", "t", nil, "Only items carrying every tag")
	pluginsListCmd.Flags().StringVar(&listSort, "sort", "", "Sort by relevance, name, plugin or kind")
	pluginsListCmd.Flags().BoolVar(&listDesc, "desc", false, "Reverse the sort order")
	pluginsListCmd.Flags().BoolVar(&listOffline, "offline", false, "Use the cached catalog")

	pluginsBrowseCmd.Flags().BoolVar(&listOffline, "offline", false, "Use the cached catalog")

	pluginsShowCmd.Flags().BoolVar(&showRaw, "raw", false, "Print markdown without rendering")

	pluginsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")

	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsShowCmd)
	pluginsCmd.AddCommand(pluginsUploadCmd)
	pluginsCmd.AddCommand(pluginsDeleteCmd)
	pluginsCmd.AddCommand(pluginsDepsCmd)
	pluginsCmd.AddCommand(pluginsBrowseCmd)
}

// catalogQuery builds a search query from the list flags.
func catalogQuery() (catalog.Query, error) {
	q := catalog.Query{Text: listSearch, Tags: listTags, Desc: listDesc}
	for _, k := range listKinds {
		kind, err := catalog.ParseKind(k)
		if err != nil {
			return q, err
		}
		q.Kinds = append(q.Kinds, kind)
	}
	sortKey, err := catalog.ParseSortKey(listSort)
	if err != nil {
		return q, err
	}
	q.Sort = sortKey
	return q, nil
}

func runPluginsList(cmd *cobra.Command, args []string) error {
	q, err := catalogQuery()
	if err != nil {
		return err
	}

	items, err := fetchCatalog(cmd.Context(), listOffline)
	if err != nil {
		return err
	}

	matches := catalog.Search(items, q)
	out := cmd.OutOrStdout()
	if len(matches) == 0 {
		fmt.Fprintln(out, "No matching plugins.")
		return nil
	}
	writeCatalogTable(out, matches)
	return nil
}

// Column widths of the plugin table, in terminal cells.
const (
	colKind = 11
	colID   = 36
	colName = 28
	colDesc = 48
)

func writeCatalogTable(w io.Writer, matches []catalog.Match) {
	header := strings.Join([]string{
		cell("KIND", colKind), cell("ID", colID), cell("NAME", colName), "DESCRIPTION",
	}, "  ")
	fmt.Fprintln(w, styles.DimStyle.Render(header))

	for _, m := range matches {
		it := m.Item
		fmt.Fprintln(w, strings.Join([]string{
			cell(string(it.Kind), colKind),
			cell(it.ID(), colID),
			cell(it.Name, colName),
			truncate(firstLine(it.Description), colDesc),
		}, "  "))
	}
}

func runPluginsShow(cmd *cobra.Command, args []string) error {
	p, err := newPortalClient().GetPlugin(cmd.Context(), args[0])
	if err != nil {
		if portal.IsNotFound(err) {
			return fmt.Errorf("plugin %s is not installed", args[0])
		}
		return err
	}

	md := pluginMarkdown(p)
	if showRaw {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	rendered, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("render plugin: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

// pluginMarkdown describes a plugin and its components as markdown.
func pluginMarkdown(p portal.Plugin) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Name)
	fmt.Fprintf(&b, "`%s` version %s", p.GID, p.Version)
	if p.Author != "" {
		fmt.Fprintf(&b, " by %s", p.Author)
	}
	b.WriteString("\n\n")
	if p.Description != "" {
		b.WriteString(p.Description)
		b.WriteString("\n\n")
	}
	if p.URL != "" {
		fmt.Fprintf(&b, "<%s>\n\n", p.URL)
	}

	sections := []struct {
		title string
		comps []portal.Component
	}{
		{"Algorithms", p.Algorithms},
		{"Widgets", p.Widgets},
		{"Input blocks", p.InputBlocks},
		{"Templates", p.Templates},
	}
	for _, s := range sections {
		if len(s.comps) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", s.title)
		for _, c := range s.comps {
			fmt.Fprintf(&b, "- **%s** `%s`", c.Name, c.CID)
			if d := firstLine(c.Description); d != "" {
				fmt.Fprintf(&b, ": %s", d)
			}
			if len(c.Tags) > 0 {
				fmt.Fprintf(&b, " _(%s)_", strings.Join(c.Tags, ", "))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func runPluginsUpload(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	p, err := newPortalClient().UploadPlugin(cmd.Context(), filepath.Base(args[0]), f)
	if err != nil {
		return err
	}

	logger.Info("plugin installed", zap.String("gid", p.GID), zap.String("version", p.Version))
	fmt.Fprintf(cmd.OutOrStdout(), "Installed %s %s (%s)\n", p.Name, p.Version, p.GID)
	return nil
}

// confirmDelete asks before uninstalling. Tests replace it.
var confirmDelete = func(gid string) (bool, error) {
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Uninstall plugin %s?", gid)).
			Description("Its algorithms, widgets, input blocks and templates are removed too.").
			Affirmative("Uninstall").
			Negative("Cancel").
			Value(&ok),
	)).Run()
	return ok, err
}

func runPluginsDelete(cmd *cobra.Command, args []string) error {
	gid := args[0]
	if !deleteYes {
		ok, err := confirmDelete(gid)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
			return nil
		}
	}

	if err := newPortalClient().DeletePlugin(cmd.Context(), gid); err != nil {
		return err
	}
	logger.Info("plugin uninstalled", zap.String("gid", gid))
	fmt.Fprintf(cmd.OutOrStdout(), "Uninstalled %s\n", gid)
	return nil
}

func runPluginsDeps(cmd *cobra.Command, args []string) error {
	statuses, err := newPortalClient().CheckDependencies(cmd.Context(), args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	missing := 0
	for _, s := range statuses {
		if s.Present {
			fmt.Fprintln(out, styles.SuccessStyle.Render("✓ "+s.Requirement))
			continue
		}
		missing++
		fmt.Fprintln(out, styles.ErrorStyle.Render("✗ "+s.Requirement))
	}
	if missing > 0 {
		return errors.New(pluralize(missing, "requirement") + " missing")
	}
	return nil
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
