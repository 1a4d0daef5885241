package cmd

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fioncat/txtcrawl/crawler"
	"github.com/fioncat/txtcrawl/ngram"
	"github.com/fioncat/txtcrawl/osutils"
	"github.com/fioncat/txtcrawl/types"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type ngramsOptions struct {
	output string
	top    int

	ignoreCase bool
}

func Ngrams() *cobra.Command {
	var no ngramsOptions
	cmd := &cobra.Command{
		Use:   "ngrams [--output FILE] [--top N]",
		Short: "Count bigrams and trigrams in the combined output file",

		Args: cobra.ExactArgs(0),

		RunE: func(_ *cobra.Command, _ []string) error {
			return no.run()
		},
	}

	flags := cmd.Flags()

	flags.StringVarP(&no.output, "output", "o", "", "The combined output file, default is crawl.output in config")
	flags.IntVarP(&no.top, "top", "n", 20, "Show only the N most frequent n-grams, 0 shows all")
	flags.BoolVarP(&no.ignoreCase, "ignore-case", "i", false, "Count words case-insensitively")

	return cmd
}

func (no *ngramsOptions) run() error {
	path := no.output
	if path == "" {
		cfg, err := types.LoadConfig()
		if err != nil {
			return err
		}
		path = cfg.Crawl.Output
	}

	counter := ngram.NewCounter(ngram.Options{
		Boundary:   strings.TrimSpace(crawler.Separator),
		IgnoreCase: no.ignoreCase,
	})
	err := counter.ReadFile(afero.NewOsFs(), path)
	if err != nil {
		return err
	}
	logrus.Debugf("Read %d words from %q", counter.Words(), path)

	bigrams := counter.Bigrams()
	trigrams := counter.Trigrams()

	showNgrams("Bigram", ngram.Top(bigrams, no.top))
	fmt.Println()
	showNgrams("Trigram", ngram.Top(trigrams, no.top))

	fmt.Printf("\n%s words, %s distinct bigrams, %s distinct trigrams\n",
		humanize.Comma(int64(counter.Words())),
		humanize.Comma(int64(len(bigrams))),
		humanize.Comma(int64(len(trigrams))))
	return nil
}

func showNgrams(title string, counts []ngram.Count) {
	if len(counts) == 0 {
		fmt.Printf("No %ss\n", strings.ToLower(title))
		return
	}
	rows := make([][]string, len(counts))
	for i, count := range counts {
		rows[i] = []string{count.Gram, humanize.Comma(int64(count.Count))}
	}
	osutils.ShowTable([]string{title, "Count"}, rows)
}
