package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/KaramelBytes/tabula-cli/internal/analysis"
	"github.com/KaramelBytes/tabula-cli/internal/chart"
	"github.com/KaramelBytes/tabula-cli/internal/dataset"
	"github.com/KaramelBytes/tabula-cli/internal/sample"
	"github.com/KaramelBytes/tabula-cli/internal/session"
	"github.com/KaramelBytes/tabula-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	shFlags  dataFlags
	shNoSync bool
	shQuiet  bool
)

var shellCmd = &cobra.Command{
	Use:   "shell [file]",
	Short: "Open an interactive exploration session",
	Long: `Starts a session that keeps the dataset, filters, chart settings,
collaborators and comments in memory. Loading data starts the periodic
refresh, which re-renders the selected chart when the data view changes.
Type "help" for commands.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sh := &shell{out: cmd.OutOrStdout(), quiet: shQuiet}
		opt, err := sessionOptions()
		if err != nil {
			return err
		}
		if err := shFlags.apply(&opt); err != nil {
			return err
		}
		opt.AutoSync = !shNoSync
		opt.OnRefresh = sh.onRefresh
		sh.s = session.New(opt)
		defer sh.s.Close()

		if len(args) == 1 {
			if err := sh.exec(ctx, []string{"load", args[0]}); err != nil {
				return err
			}
			if err := shFlags.addFilters(sh.s); err != nil {
				return err
			}
		}
		return sh.run(ctx, cmd.InOrStdin())
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
	addDataFlags(shellCmd, &shFlags)
	shellCmd.Flags().BoolVar(&shNoSync, "no-sync", false, "do not start the periodic refresh on load")
	shellCmd.Flags().BoolVarP(&shQuiet, "quiet", "q", false, "suppress the prompt")
}

var errQuit = errors.New("quit")

type shell struct {
	s     *session.Session
	quiet bool

	mu  sync.Mutex // serializes writes from the refresh goroutine
	out io.Writer
}

func (sh *shell) printf(format string, args ...any) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fmt.Fprintf(sh.out, format, args...)
}

func (sh *shell) onRefresh(r session.Refresh) {
	if !r.Changed || r.Chart == nil {
		return
	}
	sh.printf("\n[refresh v%d]\n%s", r.Version, r.Chart.Text())
}

func (sh *shell) run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		if !sh.quiet {
			sh.printf("tabula> ")
		}
		if !sc.Scan() {
			break
		}
		args, err := splitArgs(sc.Text())
		if err != nil {
			sh.printf("✗ %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if err := sh.exec(ctx, args); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			sh.printf("✗ %v\n", err)
		}
	}
	return sc.Err()
}

const shellHelp = `Commands:
  load <file> | load --sample [rows] [seed]
  info                                  dataset summary
  column <name|index>                   select the chart column
  type <bar|line|scatter|pie|heatmap>   set the chart type
  agg <sum|average|count|raw>           set the numeric aggregation
  option <title|legend|position|grid|zero|scheme> <value>
  chart [column] [--json]               render the chart over filtered rows
  filter add <column> <type> <value>    types: equals contains greaterThan lessThan between
                                        quote a value containing spaces
  filter rm <column> | filter ls | filter clear
  insights [column]                     per-column statistics and insights
  forecast [column] [horizon]           linear trend projection
  heatmap <x> [y]                       10x10 occurrence grid
  collab add|rm <email> | collab ls
  comment add <text> | comment rm <id> | comment ls
  sync start|stop|status
  export [path]
  help | quit
`

func (sh *shell) exec(ctx context.Context, args []string) error {
	s := sh.s
	switch cmd, rest := strings.ToLower(args[0]), args[1:]; cmd {
	case "quit", "exit", "q":
		return errQuit
	case "help", "?":
		sh.printf("%s", shellHelp)
	case "load":
		return sh.load(ctx, rest)
	case "info":
		ds, err := s.Snapshot()
		if err != nil {
			return err
		}
		sh.printf("%s: %d rows (%d after filters), %d columns\n", s.Source(), ds.Len(), len(ds.Active), ds.Width())
		for i, h := range ds.Headers {
			sh.printf("  %d  %s (%s)\n", i, h, dataKind(ds.Column(i)))
		}
	case "column", "col":
		if len(rest) != 1 {
			return errors.New("usage: column <name|index>")
		}
		if err := s.SelectColumn(rest[0]); err != nil {
			return err
		}
		sh.printf("✓ Column set to %s\n", rest[0])
	case "type":
		if len(rest) != 1 {
			return errors.New("usage: type <bar|line|scatter|pie|heatmap>")
		}
		t, err := chart.ParseType(rest[0])
		if err != nil {
			return err
		}
		s.SetChartType(t)
		sh.printf("✓ Chart type set to %s\n", t)
	case "agg":
		if len(rest) != 1 {
			return errors.New("usage: agg <sum|average|count|raw>")
		}
		m, err := analysis.ParseMode(rest[0])
		if err != nil {
			return err
		}
		s.SetMode(m)
		sh.printf("✓ Aggregation set to %s\n", m)
	case "option", "opt":
		return sh.option(rest)
	case "chart":
		return sh.chart(rest)
	case "filter":
		return sh.filter(rest)
	case "insights":
		reports, err := s.Insights()
		if err != nil {
			return err
		}
		if len(rest) == 1 {
			i, err := s.ResolveColumn(rest[0])
			if err != nil {
				return err
			}
			reports = reports[i : i+1]
		}
		for _, r := range reports {
			sh.printf("%s\n", r.Markdown())
		}
	case "forecast":
		ref, horizon := "", 0
		if len(rest) > 0 {
			ref = rest[0]
		}
		if len(rest) > 1 {
			h, err := strconv.Atoi(rest[1])
			if err != nil || h <= 0 {
				return fmt.Errorf("invalid horizon: %s", rest[1])
			}
			horizon = h
		}
		name, r, err := s.Forecast(ref, horizon)
		if err != nil {
			return err
		}
		sh.printf("%s", analysis.ForecastMarkdown(name, r))
	case "heatmap":
		if len(rest) == 0 || len(rest) > 2 {
			return errors.New("usage: heatmap <x> [y]")
		}
		y := ""
		if len(rest) == 2 {
			y = rest[1]
		}
		spec, _, err := s.Heatmap(rest[0], y)
		if err != nil {
			return err
		}
		sh.printf("%s", spec.Text())
	case "collab":
		return sh.collab(rest)
	case "comment":
		return sh.comment(rest)
	case "sync":
		return sh.syncCmd(ctx, rest)
	case "export":
		path := ""
		if len(rest) > 0 {
			path = rest[0]
		}
		out, err := s.Export(path)
		if err != nil {
			return err
		}
		sh.printf("✓ Exported report to %s\n", out)
	default:
		return fmt.Errorf("unknown command %q (type help)", args[0])
	}
	return nil
}

func (sh *shell) load(ctx context.Context, rest []string) error {
	if len(rest) == 0 {
		return errors.New("usage: load <file> | load --sample [rows] [seed]")
	}
	if rest[0] == "--sample" {
		opt := sample.Options{}
		if len(rest) > 1 {
			n, err := strconv.Atoi(rest[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid row count: %s", rest[1])
			}
			opt.Rows = n
		}
		if len(rest) > 2 {
			seed, err := strconv.ParseUint(rest[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed: %s", rest[2])
			}
			opt.Seed = seed
		}
		if err := sh.s.LoadSample(ctx, opt); err != nil {
			return err
		}
	} else if _, err := sh.s.Load(ctx, rest[0]); err != nil {
		return err
	}
	ds, _ := sh.s.Snapshot()
	sh.printf("✓ Loaded %s: %d rows, %d columns (%s)\n", sh.s.Source(), ds.Len(), ds.Width(), strings.Join(ds.Headers, ", "))
	return nil
}

func (sh *shell) option(rest []string) error {
	if len(rest) != 2 {
		return errors.New("usage: option <title|legend|position|grid|zero|scheme> <value>")
	}
	o := sh.s.Settings().Chart
	key, val := strings.ToLower(rest[0]), rest[1]
	switch key {
	case "title":
		o.Title = val
	case "position":
		o.LegendPosition = strings.ToLower(val)
	case "scheme":
		o.ColorScheme = strings.ToLower(val)
	case "legend", "grid", "zero":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %s", key, val)
		}
		switch key {
		case "legend":
			o.ShowLegend = b
		case "grid":
			o.ShowGrid = b
		default:
			o.BeginAtZero = b
		}
	default:
		return fmt.Errorf("unknown option %q", rest[0])
	}
	if err := sh.s.SetChartOptions(o); err != nil {
		return err
	}
	sh.printf("✓ Option %s set\n", key)
	return nil
}

func (sh *shell) chart(rest []string) error {
	ref, asJSON := "", false
	for _, a := range rest {
		if a == "--json" {
			asJSON = true
			continue
		}
		ref = a
	}
	spec, err := sh.s.Chart(ref)
	if err != nil {
		return err
	}
	if asJSON {
		b, err := utils.PrettyJSON(spec)
		if err != nil {
			return err
		}
		sh.printf("%s\n", b)
		return nil
	}
	sh.printf("%s", spec.Text())
	return nil
}

func (sh *shell) filter(rest []string) error {
	s := sh.s
	if len(rest) == 0 {
		rest = []string{"ls"}
	}
	switch rest[0] {
	case "add":
		if len(rest) != 4 {
			return errors.New(`usage: filter add <column> <type> <value> (quote values with spaces: "New  York")`)
		}
		f, err := buildFilter(s, rest[1], rest[2], rest[3])
		if err != nil {
			return err
		}
		if err := s.AddFilter(f); err != nil {
			return err
		}
		ds, _ := s.Snapshot()
		sh.printf("✓ Filter applied: %d of %d rows match\n", len(ds.Active), ds.Len())
	case "rm", "remove":
		if len(rest) != 2 {
			return errors.New("usage: filter rm <column>")
		}
		col, err := s.ResolveColumn(rest[1])
		if err != nil {
			return err
		}
		if s.RemoveFilter(col) {
			sh.printf("✓ Filter removed\n")
		} else {
			sh.printf("No filter on %s\n", rest[1])
		}
	case "clear":
		s.ClearFilters()
		sh.printf("✓ Filters cleared\n")
	case "ls", "list":
		descs := s.FilterDescriptions()
		if len(descs) == 0 {
			sh.printf("No active filters\n")
		}
		for _, d := range descs {
			sh.printf("  %s\n", d)
		}
	default:
		return fmt.Errorf("unknown filter command %q", rest[0])
	}
	return nil
}

func (sh *shell) collab(rest []string) error {
	b := sh.s.Board()
	if len(rest) == 0 {
		rest = []string{"ls"}
	}
	switch rest[0] {
	case "add":
		if len(rest) != 2 {
			return errors.New("usage: collab add <email>")
		}
		if err := b.AddCollaborator(rest[1]); err != nil {
			return err
		}
		sh.printf("✓ Added collaborator %s\n", rest[1])
	case "rm", "remove":
		if len(rest) != 2 {
			return errors.New("usage: collab rm <email>")
		}
		if b.RemoveCollaborator(rest[1]) {
			sh.printf("✓ Removed collaborator %s\n", rest[1])
		} else {
			sh.printf("No collaborator %s\n", rest[1])
		}
	case "ls", "list":
		list := b.Collaborators()
		if len(list) == 0 {
			sh.printf("No collaborators\n")
		}
		for _, c := range list {
			sh.printf("  %s\n", c)
		}
	default:
		return fmt.Errorf("unknown collab command %q", rest[0])
	}
	return nil
}

func (sh *shell) comment(rest []string) error {
	b := sh.s.Board()
	if len(rest) == 0 {
		rest = []string{"ls"}
	}
	switch rest[0] {
	case "add":
		c, err := b.AddComment(strings.Join(rest[1:], " "))
		if err != nil {
			return err
		}
		sh.printf("✓ Comment %s added\n", c.ID[:8])
	case "rm", "remove", "delete":
		if len(rest) != 2 {
			return errors.New("usage: comment rm <id>")
		}
		if b.DeleteComment(rest[1]) {
			sh.printf("✓ Comment deleted\n")
		} else {
			sh.printf("No comment %s\n", rest[1])
		}
	case "ls", "list":
		list := b.Comments()
		if len(list) == 0 {
			sh.printf("No comments\n")
		}
		for _, c := range list {
			sh.printf("  [%s] %s (%s): %s\n", c.ID[:8], c.Author, c.Timestamp.Format("2006-01-02 15:04:05"), c.Text)
		}
	default:
		return fmt.Errorf("unknown comment command %q", rest[0])
	}
	return nil
}

func (sh *shell) syncCmd(ctx context.Context, rest []string) error {
	s := sh.s
	if len(rest) == 0 {
		rest = []string{"status"}
	}
	switch rest[0] {
	case "start", "on":
		if _, err := s.Snapshot(); err != nil {
			return err
		}
		s.StartSync(ctx)
		sh.printf("✓ Sync every %s\n", s.SyncInterval())
	case "stop", "off":
		s.StopSync()
		sh.printf("✓ Sync stopped\n")
	case "status":
		state := "stopped"
		if s.Syncing() {
			state = "running every " + s.SyncInterval().String()
		}
		sh.printf("Sync %s\n", state)
	default:
		return fmt.Errorf("unknown sync command %q", rest[0])
	}
	return nil
}

func dataKind(values []dataset.Value) string { return dataset.Classify(values).String() }

// splitArgs splits a shell line on whitespace. Single quotes are literal,
// double quotes allow backslash escapes, and a backslash outside quotes
// escapes the next rune.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inArg   bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, inArg = true, true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote, inArg = r, true
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("trailing backslash")
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args, nil
}
