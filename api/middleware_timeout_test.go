package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeoutMiddlewarePassThrough(t *testing.T) {
	h := TimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok": true}`))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/fast", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"ok": true}`, rr.Body.String())
}

func TestTimeoutMiddlewareTimesOut(t *testing.T) {
	release := make(chan struct{})
	handlerDone := make(chan struct{})

	h := TimeoutMiddleware(25*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"late": true}`))
		close(handlerDone)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/slow", nil))

	assert.Equal(t, http.StatusRequestTimeout, rr.Code)
	assert.Contains(t, rr.Body.String(), "Request timeout")

	// the handler's late write must be dropped, not race the timeout body
	close(release)
	<-handlerDone
	assert.Equal(t, http.StatusRequestTimeout, rr.Code)
	assert.NotContains(t, rr.Body.String(), "late")
}

func TestTimeoutWriterHandlerWinsRace(t *testing.T) {
	rr := httptest.NewRecorder()
	tw := &timeoutWriter{ResponseWriter: rr}

	tw.WriteHeader(http.StatusOK)
	_, _ = tw.Write([]byte(`{"ok": true}`))
	tw.timeout()

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok": true}`, rr.Body.String())
}
