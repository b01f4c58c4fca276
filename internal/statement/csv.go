package statement

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"groupnest/ledger/internal/currencyutils"
	"groupnest/ledger/internal/dateutils"
	"groupnest/ledger/internal/importer"
	"groupnest/ledger/internal/models"
)

// csvRow maps one line of a delimited statement export.
type csvRow struct {
	Date        string `csv:"Date"`
	Amount      string `csv:"Amount"`
	Description string `csv:"Description"`
	Notes       string `csv:"Notes"`
	Balance     string `csv:"Balance"`
}

// SetDelimiter sets the delimiter used when reading CSV statements.
func SetDelimiter(delim rune) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		r.LazyQuotes = true
		return r
	})
}

// ReadCSVFile reads a delimited statement export into import rows.
func ReadCSVFile(path string) ([]importer.Row, error) {
	log.WithField("file", path).Info("Reading CSV statement")

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	var raw []*csvRow
	if err := gocsv.UnmarshalFile(file, &raw); err != nil {
		return nil, fmt.Errorf("error parsing CSV file: %w", err)
	}

	rows := make([]importer.Row, 0, len(raw))
	for n, r := range raw {
		row, err := convertCSVRow(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+1, err)
		}
		rows = append(rows, row)
	}

	log.WithField("count", len(rows)).Info("Successfully read CSV statement")
	return rows, nil
}

func convertCSVRow(r *csvRow) (importer.Row, error) {
	date, err := dateutils.ParseDate(r.Date)
	if err != nil {
		return importer.Row{}, err
	}
	amount, err := currencyutils.ParseAmount(r.Amount)
	if err != nil {
		return importer.Row{}, err
	}

	row := importer.Row{
		Date:        date,
		Amount:      models.RoundAmount(amount),
		Description: r.Description,
		Notes:       r.Notes,
	}
	if r.Balance != "" {
		if balance, err := currencyutils.ParseAmount(r.Balance); err == nil {
			row.BankBalance = balance
		}
	}
	return row, nil
}
