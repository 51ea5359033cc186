package sse

import (
	"bufio"
	"bytes"
	"io"
)

// Scanner reads frames from a byte stream. The transport delivers chunks of
// arbitrary size; partial frames spanning chunk boundaries are buffered and
// yielded only once the blank-line delimiter is observed, so fragmentation
// never affects the frame sequence.
//
// A Scanner is single-pass: once Next returns an error (including io.EOF)
// it returns that error forever.
type Scanner struct {
	sc   *bufio.Scanner
	done bool
	err  error
}

// NewScanner returns a Scanner reading frames from r.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sc.Split(splitFrames)
	return &Scanner{sc: sc}
}

// Next returns the next frame. It returns io.EOF on clean end of stream and
// after the terminal frame has been observed; any bytes following the
// terminal frame are ignored. Empty separator runs are skipped, not
// surfaced.
func (s *Scanner) Next() (Frame, error) {
	if s.err != nil {
		return Frame{}, s.err
	}
	if s.done {
		s.err = io.EOF
		return Frame{}, io.EOF
	}
	for {
		if !s.sc.Scan() {
			if err := s.sc.Err(); err != nil {
				s.err = err
			} else {
				s.err = io.EOF
			}
			return Frame{}, s.err
		}
		raw := bytes.TrimSpace(s.sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		frame := parseFrame(append([]byte(nil), raw...))
		if frame.Done {
			// No further frames are produced after the terminal marker.
			s.done = true
		}
		return frame, nil
	}
}

// splitFrames is a bufio.SplitFunc that tokenizes on blank-line delimiters.
// Both "\n\n" and "\r\n\r\n" separators are accepted. A trailing frame
// without a delimiter is yielded at EOF.
func splitFrames(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	lf := bytes.Index(data, []byte("\n\n"))
	crlf := bytes.Index(data, []byte("\n\r\n"))
	if crlf >= 0 && (lf < 0 || crlf < lf) {
		return crlf + 3, data[:crlf], nil
	}
	if lf >= 0 {
		return lf + 2, data[:lf], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
