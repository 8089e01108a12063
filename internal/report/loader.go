// Package report loads payment records, derives aggregates from them and
// assembles the presentation model shown by the dashboard.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"paydash/internal/core"
)

// Field names of one element of the input array.
const (
	FieldUsername    = "username"
	FieldDate        = "date"
	FieldDailyAmount = "daily_amount"
)

var (
	errMissingField = errors.New("missing")
	errNotString    = errors.New("not a string")
	errNotNumber    = errors.New("not a number")
	errNotObject    = errors.New("not an object")
	errOutOfRange   = errors.New("out of range")
)

// minAmountExponent bounds how many fractional digits an amount may carry.
// Rounding to core.AmountPlaces rescales the coefficient, which gets
// arbitrarily slow for exponents like 1e-50000000.
const minAmountExponent = -64

// LoadFile reads the JSON array at path and returns its records in file order.
func LoadFile(path string) ([]core.PaymentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, core.ErrFileMissing)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return records, nil
}

// Decode parses a JSON array of payment records.
//
// Syntax errors and a non-array top level value are reported as
// core.ErrMalformedInput. Problems inside a single element are reported as a
// *core.RecordError, which matches core.ErrMalformedRecord.
func Decode(r io.Reader) ([]core.PaymentRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: not valid JSON", core.ErrMalformedInput)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array of records", core.ErrMalformedInput)
	}

	records := make([]core.PaymentRecord, 0, len(elems))
	for i, raw := range elems {
		rec, err := decodeRecord(raw)
		if err != nil {
			err.Index = i
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRecord(raw json.RawMessage) (core.PaymentRecord, *core.RecordError) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return core.PaymentRecord{}, &core.RecordError{Err: errNotObject}
	}

	username, err := stringField(fields, FieldUsername)
	if err != nil {
		return core.PaymentRecord{}, &core.RecordError{Field: FieldUsername, Err: err}
	}

	dateStr, err := stringField(fields, FieldDate)
	if err != nil {
		return core.PaymentRecord{}, &core.RecordError{Field: FieldDate, Err: err}
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.PaymentRecord{}, &core.RecordError{Field: FieldDate, Err: err}
	}

	amount, err := numberField(fields, FieldDailyAmount)
	if err != nil {
		return core.PaymentRecord{}, &core.RecordError{Field: FieldDailyAmount, Err: err}
	}

	return core.PaymentRecord{Username: username, Date: date, DailyAmount: amount}, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return "", errMissingField
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errNotString
	}
	return s, nil
}

// numberField accepts only JSON numbers; quoted numbers are rejected.
func numberField(fields map[string]json.RawMessage, name string) (decimal.Decimal, error) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return decimal.Decimal{}, errMissingField
	}
	var n json.Number
	if len(raw) == 0 || raw[0] == '"' {
		return decimal.Decimal{}, errNotNumber
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return decimal.Decimal{}, errNotNumber
	}
	if f, _ := strconv.ParseFloat(n.String(), 64); math.IsInf(f, 0) {
		return decimal.Decimal{}, errOutOfRange
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, errNotNumber
	}
	if d.Exponent() < minAmountExponent && !d.IsZero() {
		return decimal.Decimal{}, errOutOfRange
	}
	return d, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
