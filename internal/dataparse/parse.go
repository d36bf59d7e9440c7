package dataparse

import (
	"fmt"
	"strings"
)

// Kind names a downloadable data format.
type Kind string

const (
	KindCSV  Kind = "csv"
	KindJSON Kind = "json"
	KindPDF  Kind = "pdf"
	KindXLSX Kind = "xlsx"
)

// KindFromExtension maps a file extension (".csv" or "csv") to a Kind.
func KindFromExtension(ext string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimPrefix(ext, "."))); k {
	case KindCSV, KindJSON, KindPDF, KindXLSX:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, ext)
	}
}
