package logger

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"time"
)

const (
	esSlowThreshold = 500 * time.Millisecond
	esBodyLimit     = 1000
)

// ESTransport 记录 Elasticsearch 请求的错误、慢查询与非 2xx 响应
type ESTransport struct {
	Transport http.RoundTripper
}

func (t *ESTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	var reqBody []byte
	if req.Body != nil {
		reqBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}

	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)

	fields := []any{
		log.String("method", req.Method),
		log.String("path", req.URL.Path),
		log.Duration("latency", elapsed),
		log.String("req_body", truncate(reqBody)),
	}
	if err != nil {
		log.ErrorContext(req.Context(), "ES Error", append(fields, log.Any("err", err))...)
		return nil, err
	}
	fields = append(fields, log.Int("status", resp.StatusCode))

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		var resBody []byte
		if resp.Body != nil {
			resBody, _ = io.ReadAll(resp.Body)
			resp.Body = io.NopCloser(bytes.NewReader(resBody))
		}
		log.ErrorContext(req.Context(), "ES Error", append(fields, log.String("res_body", truncate(resBody)))...)
	case elapsed > esSlowThreshold:
		log.WarnContext(req.Context(), "ES Slow", fields...)
	}
	return resp, nil
}

func truncate(body []byte) string {
	if len(body) > esBodyLimit {
		return string(body[:esBodyLimit]) + "...[truncated]"
	}
	return string(body)
}
