package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/iota-uz/hrdesk/modules/hrm"
	"github.com/iota-uz/hrdesk/pkg/datasource"
	"github.com/iota-uz/hrdesk/pkg/intl"
	"github.com/iota-uz/hrdesk/pkg/listview"
	"github.com/iota-uz/hrdesk/pkg/logging"
)

type listOptions struct {
	query   string
	filters []string
	sort    string
	desc    bool
	page    int
	size    int
}

// state turns the flags into a table state. Pages are 1-based on the
// command line.
func (o listOptions) state() (listview.State, error) {
	s := listview.State{
		Global:  o.query,
		Filters: listview.FilterState{},
		Page:    listview.Pagination{PageIndex: max(o.page-1, 0), PageSize: o.size},
	}
	for _, f := range o.filters {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return listview.State{}, fmt.Errorf("invalid filter %q, expected name=value", f)
		}
		s.Filters[name] = value
	}
	if o.sort != "" {
		dir := listview.Ascending
		if o.desc {
			dir = listview.Descending
		}
		s.Sort = listview.SortState{ColumnID: o.sort, Direction: dir}
	}
	return s, nil
}

func dictionaryFor(lang string) (listview.Dictionary, error) {
	bundle := intl.NewBundle()
	if err := intl.LoadLocaleFiles(bundle, hrm.LocaleFiles()); err != nil {
		return nil, err
	}
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return intl.NewDictionary(bundle, tag), nil
}

func clientFor(cfg *settings) (*datasource.Client, error) {
	level := logrus.WarnLevel
	if cfg.verbose {
		level = logrus.DebugLevel
	}
	return datasource.New(cfg.String(cfgKeyServer),
		datasource.WithToken(cfg.String(cfgKeyToken)),
		datasource.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
		datasource.WithLogger(logging.ConsoleLogger(level)),
	)
}

func newListCmd(cfg *settings) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "Print one page of a resource table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := lookup(args[0])
			if err != nil {
				return err
			}
			state, err := opts.state()
			if err != nil {
				return err
			}
			dict, err := dictionaryFor(cfg.String(cfgKeyLang))
			if err != nil {
				return err
			}
			client, err := clientFor(cfg)
			if err != nil {
				return err
			}
			view, err := r.list(cmd.Context(), client, state, dict)
			if err != nil {
				return err
			}
			return renderView(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().StringVarP(&opts.query, "q", "q", "", "fuzzy search across all columns")
	cmd.Flags().StringArrayVarP(&opts.filters, "filter", "f", nil, "filter as name=value, repeatable")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "column to sort by")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&opts.page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&opts.size, "size", 10, "rows per page")
	return cmd
}

type printNotifier struct {
	out, errOut io.Writer
}

func (n printNotifier) Success(message string) { fmt.Fprintln(n.out, message) }
func (n printNotifier) Error(message string)   { fmt.Fprintln(n.errOut, message) }

func newDeleteCmd(cfg *settings) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete a record after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := lookup(args[0])
			if err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid id %q", args[1])
			}
			dict, err := dictionaryFor(cfg.String(cfgKeyLang))
			if err != nil {
				return err
			}
			client, err := clientFor(cfg)
			if err != nil {
				return err
			}
			in := bufio.NewReader(cmd.InOrStdin())
			confirm := func(c listview.Confirmation) bool {
				if yes {
					return true
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s [y/N] ", c.Title, c.Body)
				answer, _ := in.ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				return answer == "y" || answer == "yes"
			}
			n := printNotifier{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
			return r.remove(cmd.Context(), client, id, dict, confirm, n)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
