// Package statement turns bank statement files into import rows. Two
// formats are supported: delimited CSV exports and CAMT.053 XML account
// statements. The readers only parse; persisting the rows is the
// importer's job.
package statement

import (
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"groupnest/ledger/internal/importer"
	"groupnest/ledger/internal/ledgererror"
)

var log = logrus.New()

// SetLogger allows setting a custom logger
func SetLogger(logger *logrus.Logger) {
	if logger != nil {
		log = logger
	}
}

// ReadFile parses a statement file into import rows, picking the reader
// from the file extension: .xml is CAMT.053, everything else is treated
// as CSV. Rows come back in file order.
func ReadFile(path string) ([]importer.Row, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return ReadCAMTFile(path)
	case ".csv":
		return ReadCSVFile(path)
	default:
		return nil, &ledgererror.ValidationError{
			Field:  "file",
			Reason: "unsupported statement format: " + filepath.Ext(path),
		}
	}
}
