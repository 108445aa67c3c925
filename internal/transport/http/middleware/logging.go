package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

type logEntry struct {
	Timestamp  string `json:"ts"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Status     int    `json:"status"`
	Bytes      int    `json:"bytes"`
	Duration   int64  `json:"durationMs"`
	RequestID  string `json:"requestId"`
	EmployeeID string `json:"employeeId,omitempty"`
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Logger prints one JSON line per request. Mount it after RequestID and Auth
// so both ids are on the context.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		entry := logEntry{
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Method:     r.Method,
			Path:       r.URL.Path,
			Status:     recorder.status,
			Bytes:      recorder.bytes,
			Duration:   time.Since(start).Milliseconds(),
			RequestID:  GetRequestID(r.Context()),
		}
		if user, ok := GetUser(r.Context()); ok {
			entry.EmployeeID = user.Employee.ID
		}

		payload, _ := json.Marshal(entry)
		log.Println(string(payload))
	})
}
