package realtime

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// STOMP 1.2 commands used by the client
const (
	stompConnect    = "CONNECT"
	stompConnected  = "CONNECTED"
	stompSubscribe  = "SUBSCRIBE"
	stompDisconnect = "DISCONNECT"
	stompMessage    = "MESSAGE"
	stompError      = "ERROR"
	stompReceipt    = "RECEIPT"
)

var errIncompleteFrame = errors.New("stomp: incomplete frame")

// Frame STOMP frame
type Frame struct {
	Command string
	Headers map[string]string
	Body    []byte
}

// Header value of key
func (f Frame) Header(key string) string {
	return f.Headers[key]
}

// Encode wire bytes, headers sorted for a stable output
func (f Frame) Encode() []byte {
	var b bytes.Buffer
	b.WriteString(f.Command)
	b.WriteByte('\n')

	keys := make([]string, 0, len(f.Headers))
	for k := range f.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	escape := f.Command != stompConnect && f.Command != stompConnected
	for _, k := range keys {
		v := f.Headers[k]
		if escape {
			k, v = escapeHeader(k), escapeHeader(v)
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(v)
		b.WriteByte('\n')
	}
	if len(f.Body) > 0 {
		b.WriteString("content-length:")
		b.WriteString(strconv.Itoa(len(f.Body)))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.Write(f.Body)
	b.WriteByte(0)
	return b.Bytes()
}

// DecodeFrames split data into frames, bare EOLs are heart-beats and skipped
func DecodeFrames(data []byte) ([]Frame, error) {
	var frames []Frame
	for {
		data = bytes.TrimLeft(data, "\r\n")
		if len(data) == 0 {
			return frames, nil
		}
		f, rest, err := decodeFrame(data)
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
		data = rest
	}
}

func decodeFrame(data []byte) (Frame, []byte, error) {
	headerEnd, sepLen := bytes.Index(data, []byte("\n\n")), 2
	if crlf := bytes.Index(data, []byte("\r\n\r\n")); crlf >= 0 && (headerEnd < 0 || crlf < headerEnd) {
		headerEnd, sepLen = crlf, 4
	}
	if headerEnd < 0 {
		return Frame{}, nil, errIncompleteFrame
	}

	lines := strings.Split(strings.ReplaceAll(string(data[:headerEnd]), "\r\n", "\n"), "\n")
	f := Frame{Command: lines[0], Headers: make(map[string]string, len(lines)-1)}
	if f.Command == "" {
		return Frame{}, nil, fmt.Errorf("stomp: empty command")
	}
	unescape := f.Command != stompConnect && f.Command != stompConnected
	for _, line := range lines[1:] {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return Frame{}, nil, fmt.Errorf("stomp: bad header line %q", line)
		}
		if unescape {
			k, v = unescapeHeader(k), unescapeHeader(v)
		}
		// first occurrence wins
		if _, dup := f.Headers[k]; !dup {
			f.Headers[k] = v
		}
	}

	body := data[headerEnd+sepLen:]
	if cl, ok := f.Headers["content-length"]; ok {
		n, err := strconv.Atoi(cl)
		if err != nil || n < 0 {
			return Frame{}, nil, fmt.Errorf("stomp: bad content-length %q", cl)
		}
		if len(body) < n+1 || body[n] != 0 {
			return Frame{}, nil, errIncompleteFrame
		}
		f.Body = body[:n]
		return f, body[n+1:], nil
	}

	end := bytes.IndexByte(body, 0)
	if end < 0 {
		return Frame{}, nil, errIncompleteFrame
	}
	f.Body = body[:end]
	return f, body[end+1:], nil
}

var (
	headerEscaper   = strings.NewReplacer("\\", "\\\\", "\r", "\\r", "\n", "\\n", ":", "\\c")
	headerUnescaper = strings.NewReplacer("\\\\", "\\", "\\r", "\r", "\\n", "\n", "\\c", ":")
)

func escapeHeader(s string) string {
	return headerEscaper.Replace(s)
}

func unescapeHeader(s string) string {
	return headerUnescaper.Replace(s)
}
