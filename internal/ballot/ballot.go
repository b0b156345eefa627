// Package ballot renders a code-gated poll's vote codes for distribution,
// as plain text or as a printable sheet of QR codes.
package ballot

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// Sheet is everything needed to print one poll's codes.
type Sheet struct {
	PollID string
	Title  string
	Codes  []string

	// Origin is the public base URL voters open, e.g. https://enquesta.cat.
	Origin string
	Brand  string
}

// VoteURL is the link a QR code points at. Opening it pre-fills the code.
func VoteURL(origin, pollID, code string) string {
	return fmt.Sprintf("%s/poll/%s?code=%s",
		strings.TrimRight(origin, "/"), url.PathEscape(pollID), url.QueryEscape(code))
}

// RenderText writes one code per line.
func RenderText(w io.Writer, sheet Sheet) error {
	bw := bufio.NewWriter(w)
	for _, code := range sheet.Codes {
		if _, err := bw.WriteString(code + "\n"); err != nil {
			return fmt.Errorf("failed to write vote codes: %w", err)
		}
	}
	return bw.Flush()
}

func TextFilename(pollID string) string {
	return fmt.Sprintf("vote-codes-%s.txt", pollID)
}

func PDFFilename(pollID string) string {
	return fmt.Sprintf("vote-codes-%s.pdf", pollID)
}
