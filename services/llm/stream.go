package llm

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
)

// Decoder incrementally parses an SSE chat completion stream into content
// deltas. Reads from the underlying stream land in a carry-over buffer, so a
// frame split across two chunks reconstructs exactly as if it had arrived
// whole.
type Decoder struct {
	r    io.Reader
	buf  []byte
	tail []byte // unconsumed bytes carried between reads
	done bool
}

type streamFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// NewDecoder wraps an SSE stream body
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, buf: make([]byte, 512)}
}

// Next returns the next non-empty content delta. It returns io.EOF once the
// stream ends or a "data: [DONE]" terminator frame arrives.
func (d *Decoder) Next() (string, error) {
	for {
		if d.done {
			return "", io.EOF
		}

		// Drain complete lines already buffered before reading more.
		for {
			idx := bytes.IndexByte(d.tail, '\n')
			if idx < 0 {
				break
			}
			line := string(d.tail[:idx])
			d.tail = d.tail[idx+1:]

			delta, done := parseFrameLine(line)
			if done {
				d.done = true
				return "", io.EOF
			}
			if delta != "" {
				return delta, nil
			}
		}

		n, err := d.r.Read(d.buf)
		if n > 0 {
			d.tail = append(d.tail, d.buf[:n]...)
		}
		if err == io.EOF {
			// A final line without a trailing newline still counts.
			if len(d.tail) > 0 {
				line := string(d.tail)
				d.tail = nil
				d.done = true
				delta, _ := parseFrameLine(line)
				if delta != "" {
					return delta, nil
				}
			}
			d.done = true
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
	}
}

// parseFrameLine extracts the content delta from one SSE line. The second
// return value reports the [DONE] terminator.
func parseFrameLine(line string) (string, bool) {
	line = strings.TrimSuffix(line, "\r")
	if line == "" || strings.HasPrefix(line, ":") {
		return "", false
	}
	if !strings.HasPrefix(line, "data: ") {
		return "", false
	}

	payload := strings.TrimSpace(line[len("data: "):])
	if payload == "[DONE]" {
		return "", true
	}

	var frame streamFrame
	if err := json.Unmarshal([]byte(payload), &frame); err != nil {
		// Malformed frames are skipped rather than failing the stream.
		return "", false
	}
	if len(frame.Choices) == 0 {
		return "", false
	}
	return frame.Choices[0].Delta.Content, false
}

// CollectContent reads an entire SSE stream and returns the concatenated
// assistant content
func CollectContent(r io.Reader) (string, error) {
	dec := NewDecoder(r)
	var sb strings.Builder
	for {
		delta, err := dec.Next()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(delta)
	}
}
