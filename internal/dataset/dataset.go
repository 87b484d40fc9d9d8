// Package dataset reads word sequence collections from JSON and CSV files.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ayusman/mudra/internal/sequence"
)

// ReadJSON decodes a collection from an object mapping each word to its
// sequences:
//
//	{"CAT": [[[0.1, 0.2], [0.3, 0.4]], [[0.5, 0.6]]], "DOG": ...}
//
// Words keep the order in which they appear in the document.
func ReadJSON(r io.Reader) (*sequence.Collection, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	c := sequence.NewCollection()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read word: %w", err)
		}
		word, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected word name, got %v", tok)
		}

		var seqs []sequence.Sequence
		if err := dec.Decode(&seqs); err != nil {
			return nil, fmt.Errorf("failed to decode sequences for %q: %w", word, err)
		}
		for _, s := range seqs {
			c.Add(word, s)
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// frameKey identifies one video frame.
type frameKey struct {
	video string
	frame int
}

// ReadCSV builds a collection from frame-level feature data and word
// segments.
//
// hands has a header with "video" and "frame" columns plus one column per
// feature. words has a header with "video", "word", "startframe" and
// "endframe" columns; each row becomes one sequence holding the named
// features of frames startframe through endframe inclusive. Frames missing
// from hands are skipped.
func ReadCSV(hands, words io.Reader, features []string) (*sequence.Collection, error) {
	if len(features) == 0 {
		return nil, errors.New("at least one feature is required")
	}

	frames, err := readFrames(hands, features)
	if err != nil {
		return nil, fmt.Errorf("hands: %w", err)
	}

	rows, header, err := readAll(words)
	if err != nil {
		return nil, fmt.Errorf("words: %w", err)
	}
	cols, err := columns(header, "video", "word", "startframe", "endframe")
	if err != nil {
		return nil, fmt.Errorf("words: %w", err)
	}

	c := sequence.NewCollection()
	for i, row := range rows {
		video, word := row[cols[0]], row[cols[1]]
		start, err := strconv.Atoi(strings.TrimSpace(row[cols[2]]))
		if err != nil {
			return nil, fmt.Errorf("words: row %d: startframe: %w", i+2, err)
		}
		end, err := strconv.Atoi(strings.TrimSpace(row[cols[3]]))
		if err != nil {
			return nil, fmt.Errorf("words: row %d: endframe: %w", i+2, err)
		}

		var seq sequence.Sequence
		for f := start; f <= end; f++ {
			if frame, ok := frames[frameKey{video: video, frame: f}]; ok {
				seq = append(seq, frame)
			}
		}
		c.Add(word, seq)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func readFrames(r io.Reader, features []string) (map[frameKey]sequence.Frame, error) {
	rows, header, err := readAll(r)
	if err != nil {
		return nil, err
	}
	keyCols, err := columns(header, "video", "frame")
	if err != nil {
		return nil, err
	}
	featCols, err := columns(header, features...)
	if err != nil {
		return nil, err
	}

	frames := make(map[frameKey]sequence.Frame, len(rows))
	for i, row := range rows {
		n, err := strconv.Atoi(strings.TrimSpace(row[keyCols[1]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: frame: %w", i+2, err)
		}
		f := make(sequence.Frame, len(featCols))
		for k, col := range featCols {
			f[k], err = strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", i+2, features[k], err)
			}
		}
		frames[frameKey{video: row[keyCols[0]], frame: n}] = f
	}
	return frames, nil
}

func readAll(r io.Reader) ([][]string, []string, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, errors.New("missing header")
	}
	return records[1:], records[0], nil
}

// columns returns the index of each named column in header.
func columns(header []string, names ...string) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	cols := make([]int, len(names))
	for i, name := range names {
		col, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		cols[i] = col
	}
	return cols, nil
}
