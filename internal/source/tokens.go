package source

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxTokenSize bounds a single whitespace-separated token.
const MaxTokenSize = 1 << 20

// TokenOptions controls how raw tokens are canonicalized before comparison.
type TokenOptions struct {
	// Normalize applies Unicode NFC so that canonically equivalent spellings
	// of the same word compare equal.
	Normalize bool

	// Fold applies Unicode case folding ("Alice" and "ALICE" compare equal).
	Fold bool
}

// Tokens returns a Source of whitespace-separated tokens read from r.
// Read errors and over-long tokens are reported by Err.
func Tokens(r io.Reader, opts TokenOptions) Source[string] {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxTokenSize)
	sc.Split(bufio.ScanWords)
	return &tokenSource{sc: sc, canon: opts.canonicalizer()}
}

// Canonicalize applies opts to every value of src, for values that did not
// come through Tokens (command-line arguments, for instance).
func Canonicalize(src Source[string], opts TokenOptions) Source[string] {
	canon := opts.canonicalizer()
	return Map(src, func(s string) (string, error) { return canon(s), nil })
}

func (o TokenOptions) canonicalizer() func(string) string {
	var fold *cases.Caser
	if o.Fold {
		c := cases.Fold()
		fold = &c
	}
	return func(tok string) string {
		if o.Normalize {
			tok = norm.NFC.String(tok)
		}
		if fold != nil {
			tok = fold.String(tok)
		}
		return tok
	}
}

type tokenSource struct {
	sc    *bufio.Scanner
	canon func(string) string
	cur   string
}

func (t *tokenSource) Next() bool {
	if !t.sc.Scan() {
		t.cur = ""
		return false
	}
	t.cur = t.canon(t.sc.Text())
	return true
}

func (t *tokenSource) Value() string { return t.cur }

func (t *tokenSource) Err() error {
	if err := t.sc.Err(); err != nil {
		return fmt.Errorf("read tokens: %w", err)
	}
	return nil
}

// ParseInt64 converts a decimal token; for use with Map.
func ParseInt64(tok string) (int64, error) {
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse integer token %q: %w", tok, err)
	}
	return v, nil
}
