// Package transfer converts between the tabular CSV representation of
// contacts and contact records, in both directions. Import isolates faults
// per row: a failing row is recorded and does not abort the remaining rows.
package transfer

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"gitlab.com/contactdeck/contacts-manager/internal/model"
)

// exportHeader is the fixed column order of exported documents. Import maps
// columns by the header row instead, so an imported file may omit or reorder
// columns.
var exportHeader = []string{"id", "name", "email", "phone", "favorite", "tags", "profilePic"}

// Creator is the slice of the repository that the import pipeline needs.
type Creator interface {
	Create(in model.ContactInput) (model.Contact, error)
}

// RowFailure records one CSV row that could not be persisted.
type RowFailure struct {
	Contact model.ContactInput `json:"contact"`
	Error   string             `json:"error"`
}

// Report is the aggregate outcome of one import run.
type Report struct {
	Imported int
	Failures []RowFailure
}

// Preview returns at most max failures plus the number of omitted ones, so
// that user-visible error payloads stay bounded.
func (r Report) Preview(max int) ([]RowFailure, int) {
	if len(r.Failures) <= max {
		return r.Failures, 0
	}
	return r.Failures[:max], len(r.Failures) - max
}

// Export writes the contacts as a CSV document with the fixed column order
// id, name, email, phone, favorite, tags, profilePic. The favorite flag is
// serialized in its 0/1 storage form so that a re-import reads it back
// unchanged.
func Export(w io.Writer, contacts []model.Contact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, contact := range contacts {
		favorite := "0"
		if contact.Favorite {
			favorite = "1"
		}
		record := []string{
			strconv.FormatInt(contact.Id, 10),
			contact.Name,
			contact.Email,
			contact.Phone,
			favorite,
			contact.Tags,
			contact.ProfilePic,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import reads a CSV document and inserts one contact per row.
//
// The document is parsed completely before the first insert, so a structural
// CSV error aborts the import with zero rows committed; the returned error is
// then the parse error. After parsing, rows are inserted sequentially and
// independently: a row that the repository rejects (for example one with an
// empty required field) is collected in the report and does not stop later
// rows. There is no rollback of rows that succeeded before a later failure.
func Import(r io.Reader, creator Creator) (Report, error) {
	inputs, err := parseRows(r)
	if err != nil {
		return Report{}, err
	}
	var report Report
	for _, in := range inputs {
		if _, err := creator.Create(in); err != nil {
			report.Failures = append(report.Failures, RowFailure{Contact: in, Error: err.Error()})
			continue
		}
		report.Imported++
	}
	return report, nil
}

// parseRows maps every data row against the header row. Required fields are
// not validated here; rows with empty values are handed to the repository
// as-is and fail there.
func parseRows(r io.Reader) ([]model.ContactInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	var inputs []model.ContactInput
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		cell := func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		inputs = append(inputs, model.ContactInput{
			Name:       cell("name"),
			Email:      cell("email"),
			Phone:      cell("phone"),
			Favorite:   parseFavorite(cell("favorite")),
			Tags:       cell("tags"),
			ProfilePic: cell("profilePic"),
		})
	}
	return inputs, nil
}

// parseFavorite accepts exactly the literals 1, true and TRUE as true.
// Everything else, including empty and garbage input, is false.
func parseFavorite(raw string) bool {
	return raw == "1" || raw == "true" || raw == "TRUE"
}
