package telemetry

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

func writeLenPrefixed(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readLenPrefixed(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteBinary writes the header (START_COLUMNS marker, sorted constants,
// column names) followed by one fixed-width row per sample: START_LINE
// marker, then time and every field as float32 (spec.md §6.3). Ported from
// TelemetryRecorder::initialize / flushDataSnapshot / writeDataBinary.
func (s *Sender) WriteBinary(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if err := writeLenPrefixed(bw, startColumnsMarker); err != nil {
		return err
	}

	keys := make([]string, 0, len(s.Constants))
	for k := range s.Constants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		if err := writeLenPrefixed(bw, k+"="+s.Constants[k]); err != nil {
			return err
		}
	}

	header := s.Header()
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(header))); err != nil {
		return err
	}
	for _, name := range header {
		if err := writeLenPrefixed(bw, name); err != nil {
			return err
		}
	}

	for _, row := range s.rows {
		if err := writeLenPrefixed(bw, startLineMarker); err != nil {
			return err
		}
		for _, v := range row {
			if err := binary.Write(bw, binary.LittleEndian, float32(v)); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// ReadBinary parses the format WriteBinary produces, returning the same
// (header, matrix) shape as Data (spec.md §6.4).
func ReadBinary(r io.Reader) (header []string, matrix [][]float64, err error) {
	marker, err := readLenPrefixed(r)
	if err != nil {
		return nil, nil, err
	}
	if marker != startColumnsMarker {
		return nil, nil, fmt.Errorf("telemetry: missing %s marker", startColumnsMarker)
	}

	var nConst uint32
	if err := binary.Read(r, binary.LittleEndian, &nConst); err != nil {
		return nil, nil, err
	}
	for i := uint32(0); i < nConst; i++ {
		if _, err := readLenPrefixed(r); err != nil {
			return nil, nil, err
		}
	}

	var nFields uint32
	if err := binary.Read(r, binary.LittleEndian, &nFields); err != nil {
		return nil, nil, err
	}
	header = make([]string, nFields)
	for i := range header {
		name, err := readLenPrefixed(r)
		if err != nil {
			return nil, nil, err
		}
		header[i] = name
	}

	for {
		marker, err := readLenPrefixed(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if marker != startLineMarker {
			return nil, nil, fmt.Errorf("telemetry: expected %s marker, got %q", startLineMarker, marker)
		}
		row := make([]float64, nFields)
		for i := range row {
			var v float32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, nil, err
			}
			row[i] = float64(v)
		}
		matrix = append(matrix, row)
	}

	return header, matrix, nil
}

// WriteText writes the comma-separated constants block, a blank line, the
// header row, and one comma-separated data row per sample (spec.md §6.3
// "text dump format").
func (s *Sender) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)

	keys := make([]string, 0, len(s.Constants))
	for k := range s.Constants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	consts := make([]string, len(keys))
	for i, k := range keys {
		consts[i] = k + "=" + s.Constants[k]
	}
	if _, err := fmt.Fprintln(bw, strings.Join(consts, ",")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(bw); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(bw, strings.Join(s.Header(), ",")); err != nil {
		return err
	}

	for _, row := range s.rows {
		fields := make([]string, len(row))
		for i, v := range row {
			fields[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if _, err := fmt.Fprintln(bw, strings.Join(fields, ",")); err != nil {
			return err
		}
	}

	return bw.Flush()
}
