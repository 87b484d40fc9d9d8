package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/dataset"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/sequence"
)

type importOptions struct {
	hands    string
	words    string
	features string
}

func newImportCmd(opts *options) *cobra.Command {
	imp := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import word sequences",
		Long: `Import word sequences into the database.

A JSON file maps each word to its sequences of feature frames:

  {"CAT": [[[0.1, 0.2], [0.3, 0.4]], [[0.5, 0.6]]], "DOG": [...]}

Alternatively, frame positions and word segments can be read from CSV:

  mudra import --hands hands.csv --words train_words.csv --features right-x,right-y

Sequences are appended when a word already exists.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := imp.read(args)
			if err != nil {
				return err
			}
			return runImport(cmd, opts, c)
		},
	}

	cmd.Flags().StringVar(&imp.hands, "hands", "", "CSV of frame features with video and frame columns")
	cmd.Flags().StringVar(&imp.words, "words", "", "CSV of word segments: video, word, startframe, endframe")
	cmd.Flags().StringVar(&imp.features, "features", "", "Comma-separated feature columns to read from --hands")

	return cmd
}

func (o *importOptions) read(args []string) (*sequence.Collection, error) {
	if len(args) == 1 {
		if o.hands != "" || o.words != "" {
			return nil, fmt.Errorf("give either a JSON file or --hands and --words, not both")
		}
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return dataset.ReadJSON(f)
	}

	if o.hands == "" || o.words == "" {
		return nil, fmt.Errorf("a JSON file or both --hands and --words are required")
	}

	hands, err := os.Open(o.hands)
	if err != nil {
		return nil, err
	}
	defer hands.Close()

	words, err := os.Open(o.words)
	if err != nil {
		return nil, err
	}
	defer words.Close()

	var features []string
	for _, f := range strings.Split(o.features, ",") {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	return dataset.ReadCSV(hands, words, features)
}

func runImport(cmd *cobra.Command, opts *options, c *sequence.Collection) error {
	st, err := opts.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()
	for _, w := range c.Words() {
		seqs := c.Sequences(w)
		word, err := st.ImportWord(uuid.New().String(), w, seqs)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-16s +%d sequences (%d total, %d features)\n", w, len(seqs), word.Sequences, word.Features)
	}

	logging.Infof("imported %d words", c.Len())
	return nil
}
