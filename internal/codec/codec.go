// Package codec converts entities to and from the line-oriented snapshot format.
//
// A document is the Header line followed by one record per entity:
//
//	kind,id,name,description,status[,subtask ids...|,epic id]
//
// Fields containing commas, quotes or line breaks are quoted CSV style; plain
// fields are written verbatim. A CSV reader folds CR LF inside quoted fields
// into LF, so names and descriptions escape a carriage return as `\r` and a
// backslash as `\\`.
package codec

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fastygo/tracker/domain"
)

// Header is the fixed first line of every snapshot document.
const Header = "type,id,name,description,status,links"

var (
	textEscaper   = strings.NewReplacer(`\`, `\\`, "\r", `\r`)
	textUnescaper = strings.NewReplacer(`\\`, `\`, `\r`, "\r")
)

const (
	fieldKind = iota
	fieldID
	fieldName
	fieldDescription
	fieldStatus
	fieldLinks
)

// MarshalLine encodes one entity as a single record without the trailing newline.
func MarshalLine(entity domain.Entity) (string, error) {
	fields, err := fields(entity)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return "", err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// UnmarshalLine decodes a single record.
func UnmarshalLine(line string) (domain.Entity, error) {
	r := newReader(strings.NewReader(line))
	record, err := r.Read()
	if err != nil {
		return nil, domain.Persistence("malformed record", err)
	}
	return decodeRecord(record)
}

// Encode writes the header followed by one record per entity.
func Encode(w io.Writer, entities []domain.Entity) error {
	if _, err := io.WriteString(w, Header+"\n"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	for _, e := range entities {
		record, err := fields(e)
		if err != nil {
			return err
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Decode reads a document produced by Encode. The first line must match Header
// exactly; a document holding only the header decodes to no entities.
func Decode(r io.Reader) ([]domain.Entity, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, domain.Persistence("read header", err)
	}
	if strings.TrimRight(first, "\r\n") != Header {
		return nil, domain.Persistence(fmt.Sprintf("unexpected header %q", strings.TrimRight(first, "\r\n")), nil)
	}

	cr := newReader(br)
	var out []domain.Entity
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.Persistence("malformed record", err)
		}
		entity, err := decodeRecord(record)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false
	return cr
}

func fields(entity domain.Entity) ([]string, error) {
	if entity == nil {
		return nil, domain.ErrInvalidPayload
	}
	b := entity.Details()
	out := []string{
		string(entity.Kind()),
		strconv.Itoa(b.ID),
		textEscaper.Replace(b.Name),
		textEscaper.Replace(b.Description),
		string(b.Status),
	}
	switch e := entity.(type) {
	case domain.Task:
	case domain.Epic:
		for _, id := range e.SubtaskIDs {
			out = append(out, strconv.Itoa(id))
		}
	case domain.Subtask:
		out = append(out, strconv.Itoa(e.EpicID))
	default:
		return nil, domain.Invalid(fmt.Sprintf("unsupported entity %T", entity))
	}
	return out, nil
}

func decodeRecord(record []string) (domain.Entity, error) {
	if len(record) < fieldLinks {
		return nil, domain.Persistence(fmt.Sprintf("record has %d fields, want at least %d", len(record), fieldLinks), nil)
	}
	kind, ok := domain.ParseKind(record[fieldKind])
	if !ok {
		return nil, domain.Persistence(fmt.Sprintf("unknown type tag %q", record[fieldKind]), nil)
	}
	base, err := decodeBase(record)
	if err != nil {
		return nil, err
	}
	links, err := parseInts(record[fieldLinks:])
	if err != nil {
		return nil, err
	}

	switch kind {
	case domain.KindTask:
		if len(links) != 0 {
			return nil, domain.Persistence("task record has trailing fields", nil)
		}
		return domain.Task{Base: base}, nil
	case domain.KindEpic:
		return domain.Epic{Base: base, SubtaskIDs: links}, nil
	default:
		if len(links) != 1 {
			return nil, domain.Persistence(fmt.Sprintf("subtask record has %d epic ids, want 1", len(links)), nil)
		}
		return domain.Subtask{Base: base, EpicID: links[0]}, nil
	}
}

func decodeBase(record []string) (domain.Base, error) {
	id, err := strconv.Atoi(record[fieldID])
	if err != nil {
		return domain.Base{}, domain.Persistence("malformed id", err)
	}
	status, err := domain.ParseStatus(record[fieldStatus])
	if err != nil {
		return domain.Base{}, domain.Persistence("malformed status", err)
	}
	return domain.Base{
		ID:          id,
		Name:        textUnescaper.Replace(record[fieldName]),
		Description: textUnescaper.Replace(record[fieldDescription]),
		Status:      status,
	}, nil
}

func parseInts(values []string) ([]int, error) {
	out := make([]int, 0, len(values))
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, domain.Persistence("malformed id reference", err)
		}
		out = append(out, n)
	}
	return out, nil
}
