package audit

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/singularity/internal/server/auth"
	"github.com/dmitrijs2005/singularity/internal/server/models"
)

// Enqueuer accepts finished entries; *Writer is the production one.
type Enqueuer interface {
	Enqueue(e models.AuditEntry) bool
}

type Recorder struct {
	sink Enqueuer
	now  func() time.Time
}

func NewRecorder(sink Enqueuer) *Recorder {
	return &Recorder{sink: sink, now: time.Now}
}

// Middleware audits requests whose context carries an authenticated actor.
// It must run inside the authentication middleware. A panicking handler is
// recorded as a 500 and the panic is passed on to the outer recoverer.
func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.ActorFrom(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		r = r.WithContext(withOutcome(r.Context()))

		var probe *bodyProbe
		if r.Body != nil && r.Body != http.NoBody {
			probe = &bodyProbe{ReadCloser: r.Body}
			r.Body = probe
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			p := recover()
			status := statusOf(ww)
			if p != nil {
				status = http.StatusInternalServerError
			}

			var bodyErr error
			if probe != nil {
				bodyErr = probe.readErr()
			}
			rec.sink.Enqueue(rec.Entry(r, actor, status, bodyErr))

			if p != nil {
				panic(p)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}

// Entry builds the audit entry for a finished request. A request is
// successful when its status is below 400 and no handler called MarkFailed.
func (rec *Recorder) Entry(r *http.Request, actor auth.Actor, status int, bodyErr error) models.AuditEntry {
	ts := rec.now().UTC()

	requestID := middleware.GetReqID(r.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}

	return models.AuditEntry{
		Timestamp:    ts,
		ActorID:      actor.UserID,
		Action:       ActionFor(r.Method),
		ResourceType: ResourceTypeFor(r.URL.Path),
		ResourceID:   ResourceIDUnresolved,
		IPAddress:    ClientIP(r),
		UserAgent:    r.UserAgent(),
		Success:      Successful(status) && !markedFailed(r.Context()),
		Details:      buildDetails(r, ts, requestID, bodyErr),
	}
}

// statusOf treats a handler that never wrote a header as 200.
func statusOf(ww middleware.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}
