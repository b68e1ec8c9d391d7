package capture

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/probelabs/apiprobe/observe"
	"github.com/probelabs/apiprobe/transport"
)

// Attachment labels used by failure reports.
const (
	LabelLastCall   = "last-call"
	LabelLastResult = "last-result"
	LabelLastError  = "last-error"
)

// BindReport attaches the store's last entry to sink during test
// cleanup when the test failed. Passing tests attach nothing.
func BindReport(tb testing.TB, s *Store, sink observe.Sink) {
	tb.Helper()
	tb.Cleanup(func() {
		if !tb.Failed() {
			return
		}
		Report(s, sink)
	})
}

// Report attaches the store's last entry to sink. Safe with an empty
// store and a failing sink; attachment never disturbs the caller.
func Report(s *Store, sink observe.Sink) {
	entry, ok := s.Last()
	if !ok {
		return
	}
	if entry.Call != nil {
		sink.Attach(LabelLastCall, renderCall(entry.Call))
	}
	if entry.Result != nil {
		sink.Attach(LabelLastResult, renderResult(entry.Result))
	}
	if entry.Err != nil {
		sink.Attach(LabelLastError, []byte(entry.Err.Error()))
	}
}

var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"x-api-key":           {},
}

func redactHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return headers
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if _, ok := sensitiveHeaders[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = v
	}
	return out
}

func renderCall(call *transport.Call) []byte {
	payload := struct {
		Method  string            `json:"method"`
		Target  string            `json:"target"`
		Headers map[string]string `json:"headers,omitempty"`
		Body    string            `json:"body,omitempty"`
	}{
		Method:  call.Method,
		Target:  call.Target,
		Headers: redactHeaders(call.Headers),
		Body:    string(call.Body),
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return []byte(call.Method + " " + call.Target)
	}
	return out
}

func renderResult(result *transport.Result) []byte {
	payload := struct {
		Status  int               `json:"status"`
		Headers map[string]string `json:"headers,omitempty"`
		Body    string            `json:"body,omitempty"`
		Elapsed string            `json:"elapsed"`
		Time    time.Time         `json:"time"`
	}{
		Status:  result.Status,
		Headers: result.Headers,
		Body:    string(result.Body),
		Elapsed: result.Elapsed.String(),
		Time:    result.Time,
	}
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return []byte(result.Elapsed.String())
	}
	return out
}
