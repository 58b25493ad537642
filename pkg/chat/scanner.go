package chat

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// recordDelimiter separates discrete event records in the stream. A record is
// only complete once its trailing blank line has arrived.
var recordDelimiter = []byte("\n\n")

var dataPrefix = []byte("data:")

// ScanRecords is a bufio.SplitFunc that tokenizes an SSE stream into records.
// Splitting happens on raw bytes before any string conversion, so a UTF-8
// rune spanning two reads is never decoded early; the trailing partial record
// is held back until its delimiter arrives, which makes parsing independent
// of how the transport chunks the stream.
func ScanRecords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.Index(data, recordDelimiter); i >= 0 {
		return i + len(recordDelimiter), data[:i], nil
	}
	if atEOF {
		// Final record may lack the trailing delimiter.
		return len(data), data, nil
	}
	return 0, nil, nil
}

// NewRecordScanner wraps a reader with record tokenization.
func NewRecordScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Split(ScanRecords)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}

// ParseRecord extracts the event from one complete record. The payload is the
// remainder of the first line carrying a "data:" prefix, with optional
// whitespace after the colon. Records without such a line, or whose payload
// is not valid JSON, report ok=false and are skipped by callers.
func ParseRecord(record []byte) (StreamEvent, bool) {
	for _, line := range bytes.Split(record, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if !bytes.HasPrefix(line, dataPrefix) {
			continue
		}

		payload := bytes.TrimLeft(line[len(dataPrefix):], " \t")
		var event StreamEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return StreamEvent{}, false
		}
		return event, true
	}
	return StreamEvent{}, false
}
