package audit

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/mssola/useragent"
)

type clientInfo struct {
	Browser        string `json:"browser,omitempty"`
	BrowserVersion string `json:"browser_version,omitempty"`
	OS             string `json:"os,omitempty"`
	Mobile         bool   `json:"mobile"`
	Bot            bool   `json:"bot"`
}

type details struct {
	Path      string     `json:"path"`
	Method    string     `json:"method"`
	Timestamp string     `json:"timestamp"`
	RequestID string     `json:"request_id,omitempty"`
	Client    clientInfo `json:"client"`
	Body      string     `json:"body,omitempty"`
}

func describeClient(ua string) clientInfo {
	if ua == "" {
		return clientInfo{}
	}
	parsed := useragent.New(ua)
	name, version := parsed.Browser()
	return clientInfo{
		Browser:        name,
		BrowserVersion: version,
		OS:             parsed.OS(),
		Mobile:         parsed.Mobile(),
		Bot:            parsed.Bot(),
	}
}

func buildDetails(r *http.Request, ts time.Time, requestID string, bodyErr error) json.RawMessage {
	d := details{
		Path:      r.URL.Path,
		Method:    r.Method,
		Timestamp: ts.UTC().Format(time.RFC3339Nano),
		RequestID: requestID,
		Client:    describeClient(r.UserAgent()),
	}
	if mutating(r.Method) {
		d.Body = BodyRedacted
		if bodyErr != nil {
			d.Body = BodyParsingError
		}
	}

	b, err := json.Marshal(d)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}

// bodyProbe remembers the first non-EOF error seen while the handler reads
// the body. The bytes themselves are passed through and never kept.
type bodyProbe struct {
	io.ReadCloser
	mu  sync.Mutex
	err error
}

func (p *bodyProbe) Read(b []byte) (int, error) {
	n, err := p.ReadCloser.Read(b)
	if err != nil && !errors.Is(err, io.EOF) {
		p.mu.Lock()
		if p.err == nil {
			p.err = err
		}
		p.mu.Unlock()
	}
	return n, err
}

// readErr reports the read error the handler ran into, if any. Bytes the
// handler left unread are never consumed here.
func (p *bodyProbe) readErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
