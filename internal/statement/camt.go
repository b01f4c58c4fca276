package statement

import (
	"fmt"
	"os"

	"gopkg.in/xmlpath.v2"

	"groupnest/ledger/internal/currencyutils"
	"groupnest/ledger/internal/dateutils"
	"groupnest/ledger/internal/importer"
	"groupnest/ledger/internal/models"
)

// XPath expressions for the CAMT.053 entry fields this reader consumes.
var (
	camtEntryPath       = xmlpath.MustCompile("//BkToCstmrStmt/Stmt/Ntry")
	camtAmountPath      = xmlpath.MustCompile("Amt")
	camtIndicatorPath   = xmlpath.MustCompile("CdtDbtInd")
	camtBookingDatePath = xmlpath.MustCompile("BookgDt/Dt")
	camtValueDatePath   = xmlpath.MustCompile("ValDt/Dt")
	camtInfoPath        = xmlpath.MustCompile("AddtlNtryInf")
	camtRemittancePath  = xmlpath.MustCompile("NtryDtls/TxDtls/RmtInf/Ustrd")
)

// ValidateCAMTFormat checks whether the file carries a CAMT.053 bank
// statement structure.
func ValidateCAMTFormat(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("error opening file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	root, err := xmlpath.Parse(file)
	if err != nil {
		log.WithField("file", path).Info("File is not valid XML")
		return false, nil
	}
	if iter := xmlpath.MustCompile("//BkToCstmrStmt/Stmt").Iter(root); !iter.Next() {
		log.WithField("file", path).Info("File is not a CAMT.053 statement")
		return false, nil
	}
	return true, nil
}

// ReadCAMTFile reads a CAMT.053 XML statement into import rows. CAMT
// amounts are unsigned with a separate credit/debit indicator; debits are
// negated here so the importer's sign inference sees them as expenses.
func ReadCAMTFile(path string) ([]importer.Row, error) {
	log.WithField("file", path).Info("Reading CAMT.053 statement")

	valid, err := ValidateCAMTFormat(path)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, fmt.Errorf("invalid CAMT.053 format: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.WithError(err).Warn("Failed to close file")
		}
	}()

	root, err := xmlpath.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("error parsing XML: %w", err)
	}

	var rows []importer.Row
	entry := 0
	for iter := camtEntryPath.Iter(root); iter.Next(); {
		entry++
		node := iter.Node()

		row, err := convertCAMTEntry(node)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", entry, err)
		}
		rows = append(rows, row)
	}

	log.WithField("count", len(rows)).Info("Successfully read CAMT.053 statement")
	return rows, nil
}

func convertCAMTEntry(node *xmlpath.Node) (importer.Row, error) {
	amountStr, ok := camtAmountPath.String(node)
	if !ok {
		return importer.Row{}, fmt.Errorf("entry has no amount")
	}
	amount, err := currencyutils.ParseAmount(amountStr)
	if err != nil {
		return importer.Row{}, err
	}
	if indicator, ok := camtIndicatorPath.String(node); ok && indicator == "DBIT" {
		amount = amount.Neg()
	}

	dateStr, ok := camtBookingDatePath.String(node)
	if !ok {
		// booking date missing, fall back to the value date
		dateStr, ok = camtValueDatePath.String(node)
		if !ok {
			return importer.Row{}, fmt.Errorf("entry has no booking or value date")
		}
	}
	date, err := dateutils.ParseDate(dateStr)
	if err != nil {
		return importer.Row{}, err
	}

	description, _ := camtInfoPath.String(node)
	notes, _ := camtRemittancePath.String(node)
	if description == "" {
		description = notes
		notes = ""
	}

	return importer.Row{
		Date:        date,
		Amount:      models.RoundAmount(amount),
		Description: description,
		Notes:       notes,
	}, nil
}
